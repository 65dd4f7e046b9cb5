package addresses

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
)

// titleCase collapses whitespace and title-cases place names. Casers keep
// state, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

func normalize(in AddressInput) (Address, error) {
	a := Address{
		Label:       strings.TrimSpace(in.Label),
		ContactName: strings.Join(strings.Fields(in.ContactName), " "),
		Phone:       strings.TrimSpace(in.Phone),
		Line1:       strings.TrimSpace(in.Line1),
		Line2:       strings.TrimSpace(in.Line2),
		City:        titleCase(in.City),
		State:       titleCase(in.State),
		Pincode:     strings.TrimSpace(in.Pincode),
		IsDefault:   in.IsDefault,
	}
	switch {
	case a.ContactName == "" || a.Line1 == "" || a.City == "" || a.State == "":
		return Address{}, httpx.Invalid("contact_name, line1, city and state are required")
	case !pincodePattern.MatchString(a.Pincode):
		return Address{}, httpx.Invalid("pincode must be 6 digits")
	case !phonePattern.MatchString(a.Phone):
		return Address{}, httpx.Invalid("phone must be 10 digits")
	}
	return a, nil
}
