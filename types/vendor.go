// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package types

import "github.com/google/uuid"

// vendor id namespace.  Changing it invalidates every previously issued
// vendor id, so don't.
var nsVendor = uuid.MustParse("7b9915a6-5a0a-43a4-b019-6cb60c2c7a35")

// Vendor is a vendor directory entry as reported by a source adapter.
type Vendor struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Type   VendorType `json:"type"`
	Source string     `json:"source"`
}

// VendorID derives a stable vendor id from the vendor name.  The id is a
// deterministic function of the name (UUIDv5 over a fixed namespace), so two
// sources reporting the same vendor produce the same id and the manager can
// deduplicate on it.
func VendorID(name string) string {
	return uuid.NewSHA1(nsVendor, []byte(name)).String()
}
