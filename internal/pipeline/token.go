package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/ComparePower/go-payload-migrate/richtext"
)

// Placeholder tokens carry inline component references through the markdown
// round trip as plain text. The delimiter characters never collide with
// markdown block syntax and the payload is base64, so converters pass the
// token through untouched.
const (
	tokenPrefix = "@@component:"
	tokenSuffix = "@@"
)

var tokenPattern = regexp.MustCompile(`@@component:([A-Za-z][A-Za-z0-9_]*):([A-Za-z0-9+/=]*)@@`)

// EncodeToken renders an inline component reference as a placeholder token.
// A nil field set encodes as an empty JSON object.
func EncodeToken(name string, props *richtext.Fields) (string, error) {
	if props == nil {
		props = richtext.NewFields()
	}
	payload, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("pipeline: encode props for %s: %w", name, err)
	}
	encoded := base64.StdEncoding.EncodeToString(payload)
	return tokenPrefix + name + ":" + encoded + tokenSuffix, nil
}

// DecodeToken reverses EncodeToken for one full token match.
func DecodeToken(token string) (string, *richtext.Fields, error) {
	match := tokenPattern.FindStringSubmatch(token)
	if match == nil || len(match[0]) != len(token) {
		return "", nil, fmt.Errorf("pipeline: %q is not a placeholder token", token)
	}
	payload, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", nil, fmt.Errorf("pipeline: token payload for %s: %w", match[1], err)
	}
	props := richtext.NewFields()
	if err := json.Unmarshal(payload, props); err != nil {
		return "", nil, fmt.Errorf("pipeline: token props for %s: %w", match[1], err)
	}
	return match[1], props, nil
}

// ContainsToken is the cheap pre-check used before splitting text nodes.
func ContainsToken(text string) bool {
	return tokenPattern.MatchString(text)
}
