// seehuhn.de/go/pdfmerge - merging of PDF documents in memory
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package numtree reads and builds PDF number trees.
//
// Number trees are sorted, integer-keyed indices.  They are used for the
// page label index and for the structure tree's parent tree.  PDF 2.0
// sections: 7.9.7
package numtree

import "seehuhn.de/go/pdfmerge/pdf"

// Entry is one key-value pair of a number tree.
type Entry struct {
	Key   pdf.Integer
	Value pdf.Object
}

// ReadAll returns all entries of the number tree rooted at root, in
// increasing key order.  Entries whose keys are out of order are
// skipped.  A nil root yields no entries.
func ReadAll(r pdf.Getter, root pdf.Object) ([]Entry, error) {
	if root == nil {
		return nil, nil
	}

	var res []Entry

	todo := []pdf.Object{root}
	for len(todo) > 0 {
		node := todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		dict, _ := pdf.GetDict(r, node)

		nums, _ := pdf.GetArray(r, dict["Nums"])
		for i := 0; i+1 < len(nums); i += 2 {
			key, err := pdf.GetInt(r, nums[i])
			if err != nil {
				return nil, err
			}
			value := nums[i+1]
			if len(res) == 0 || key > res[len(res)-1].Key {
				res = append(res, Entry{Key: key, Value: value})
			}
		}

		kids, _ := pdf.GetArray(r, dict["Kids"])
		for i := len(kids) - 1; i >= 0; i-- {
			todo = append(todo, kids[i])
		}
	}

	return res, nil
}

// Flatten builds a single-node number tree holding the given entries.
// The keys must already be in increasing order.
func Flatten(entries []Entry) pdf.Dict {
	nums := make(pdf.Array, 0, 2*len(entries))
	for _, e := range entries {
		nums = append(nums, e.Key, e.Value)
	}
	return pdf.Dict{
		"Nums": nums,
	}
}
