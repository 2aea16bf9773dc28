/*
Copyright © 2024 casm contributors

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/
package encoding

import "casm/internal/lexical"

// IsReservedWord reports whether name collides with an opcode mnemonic,
// a register name, a directive name, or a register-indirect form
// (spec.md §3's closed list of reserved words a symbol name must not
// equal).
func IsReservedWord(name string) bool {
	if _, ok := LookupMnemonic(name); ok {
		return true
	}
	if _, ok := lexical.RegisterIndex(name); ok {
		return true
	}
	if Directives[name] {
		return true
	}
	if lexical.IsRegisterIndirect(name) {
		return true
	}
	return false
}
