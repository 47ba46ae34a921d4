package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// BanAttribute names what a ban condition matches on.
type BanAttribute string

const (
	BanAttrName        BanAttribute = "name"
	BanAttrFingerprint BanAttribute = "fingerprint"
	BanAttrIP          BanAttribute = "ip"
)

// BanItem is one ban condition with its lifetime.
type BanItem struct {
	Attr     BanAttribute
	Value    string
	Duration time.Duration
}

// BanQuery is the parsed argument of /ban. The short form
// "<name> <duration>" sets Single; the attribute form
// "attr=value <duration> ..." fills Items.
type BanQuery struct {
	Single *BanItem
	Items  []BanItem
}

// ParseBanQuery parses the /ban argument string.
func ParseBanQuery(s string) (*BanQuery, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, errors.New("missing arguments")
	}

	if !strings.Contains(tokens[0], "=") {
		if len(tokens) < 2 {
			return nil, errors.New("missing duration")
		}
		d, err := utils.ParseHumanDuration(tokens[1])
		if err != nil {
			return nil, errors.New("invalid duration string")
		}
		return &BanQuery{Single: &BanItem{Attr: BanAttrName, Value: tokens[0], Duration: d}}, nil
	}

	var items []BanItem
	for i := 0; i < len(tokens); i += 2 {
		attr, value, found := strings.Cut(tokens[i], "=")
		if !found {
			return nil, errors.New("invalid attribute format")
		}
		switch BanAttribute(attr) {
		case BanAttrName, BanAttrFingerprint, BanAttrIP:
		default:
			return nil, errors.New("unknown attribute")
		}
		if i+1 >= len(tokens) {
			return nil, errors.New("missing duration for attribute")
		}
		d, err := utils.ParseHumanDuration(tokens[i+1])
		if err != nil {
			return nil, errors.New("invalid duration string")
		}
		items = append(items, BanItem{Attr: BanAttribute(attr), Value: value, Duration: d})
	}
	return &BanQuery{Items: items}, nil
}
