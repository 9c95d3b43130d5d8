package service

import (
	"regexp"
	"strings"

	"vendora/internal/model"
)

var (
	phonePattern = regexp.MustCompile(`^0[789][01]\d{8}$`)
	pinPattern   = regexp.MustCompile(`^\d{4}$`)
)

// Nigerian MNO number prefixes. Not exhaustive — unknown prefixes pass the
// consistency check rather than blocking a valid new allocation.
var prefixNetworks = map[string]string{
	"0803": "mtn", "0806": "mtn", "0703": "mtn", "0706": "mtn",
	"0813": "mtn", "0816": "mtn", "0810": "mtn", "0814": "mtn",
	"0903": "mtn", "0906": "mtn", "0913": "mtn", "0916": "mtn",

	"0805": "glo", "0807": "glo", "0705": "glo", "0815": "glo",
	"0811": "glo", "0905": "glo", "0915": "glo",

	"0802": "airtel", "0808": "airtel", "0708": "airtel", "0812": "airtel",
	"0701": "airtel", "0902": "airtel", "0901": "airtel", "0904": "airtel",
	"0907": "airtel", "0912": "airtel",

	"0809": "9mobile", "0818": "9mobile", "0817": "9mobile",
	"0909": "9mobile", "0908": "9mobile",
}

func validatePurchaseRequest(req model.PurchaseRequest) error {
	if req.PlanID == "" {
		return model.E(model.CodeInvalidRequest, "The format of your request is invalid: missing plan")
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		return model.E(model.CodeInvalidRequest, "The format of your request is invalid: bad phone number")
	}
	if !pinPattern.MatchString(req.Pin) {
		return model.E(model.CodeInvalidRequest, "The format of your request is invalid: pin must be 4 digits")
	}
	if req.Kind != model.KindData && req.Kind != model.KindAirtime {
		return model.E(model.CodeInvalidRequest, "The format of your request is invalid: unknown purchase type")
	}
	return nil
}

// networkMatches reports whether the phone number plausibly belongs to the
// plan's network. Unknown prefixes are allowed through.
func networkMatches(phone, network string) bool {
	if len(phone) < 4 {
		return false
	}
	known, ok := prefixNetworks[phone[:4]]
	if !ok {
		return true
	}
	return known == strings.ToLower(network)
}
