package metadata

import (
	"strconv"
	"strings"
)

type AssetCode struct {
	init   string
	prefix string
	id     string
}

const (
	Init          string = "IT"
	DefaultPrefix string = "GEN"
)

func (code *AssetCode) Generate() string {
	return code.init + "-" + code.prefix + code.id
}

// NewAssetCode builds the code given to assets registered without an IT asset code.
func NewAssetCode(prefix string, assetID int) AssetCode {
	var code AssetCode

	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultPrefix
	}

	code.init = Init
	code.prefix = prefix
	code.id = strconv.Itoa(assetID)

	return code
}

// PrefixFromName derives a three letter code prefix from an asset type name.
func PrefixFromName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return DefaultPrefix
	}
	return b.String()
}
