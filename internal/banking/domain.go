// Package banking resolves Indian Financial System Codes against the public
// IFSC directory.
package banking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
)

var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// ErrUnknownIFSC is returned when the directory has no branch for a code.
var ErrUnknownIFSC = fmt.Errorf("unknown IFSC: %w", httpx.ErrNotFound)

// Branch is the subset of directory data the marketplace keeps.
type Branch struct {
	IFSC     string `json:"ifsc"`
	Bank     string `json:"bank"`
	BankCode string `json:"bank_code,omitempty"`
	Branch   string `json:"branch"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
	MICR     string `json:"micr,omitempty"`
	Contact  string `json:"contact,omitempty"`
	UPI      bool   `json:"upi"`
	NEFT     bool   `json:"neft"`
	RTGS     bool   `json:"rtgs"`
	IMPS     bool   `json:"imps"`
}

// NormalizeIFSC upper-cases and trims a code.
func NormalizeIFSC(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidIFSC reports whether code has the 11 character IFSC shape.
func ValidIFSC(code string) bool {
	return ifscPattern.MatchString(code)
}
