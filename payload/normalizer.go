package payload

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-chatrelay/core"
)

// embeddedFields are the envelope fields known to carry string-encoded JSON
// sub-documents on some relay builds.
var embeddedFields = []string{"message", "attachment", "v"}

// identifierKeys are the row identifier keys whose numeric literals must not
// pass through a float64. The quoting step applies only to these.
var identifierKeys = []string{
	"id",
	"user_id",
	"chat_id",
	"link_id",
	"logId",
	"msgId",
	"src_logId",
	"src_userId",
	"src_linkId",
	"noticeId",
}

// minPrecisionRiskDigits is the literal length at which an integer no longer
// survives a float64 round-trip intact.
const minPrecisionRiskDigits = 15

var largeIDPattern = regexp.MustCompile(
	`("(?:` + strings.Join(identifierKeys, "|") + `)"\s*:\s*)(-?\d{` + strconv.Itoa(minPrecisionRiskDigits) + `,})(\s*[,}\]])`,
)

// QuoteLargeIDs rewrites unquoted integer literals that follow a known
// identifier key and have enough digits to risk precision loss, quoting them
// as strings while preserving the exact digit sequence. The substitution is
// purely textual and touches only literals immediately followed by a
// structural delimiter, so unrelated numbers are left alone.
func QuoteLargeIDs(doc string) string {
	return largeIDPattern.ReplaceAllString(doc, `$1"$2"$3`)
}

// Decode parses a raw webhook body into a RawNotification, keeping numeric
// identifiers as json.Number so their digit sequences survive.
func Decode(body []byte) (core.RawNotification, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var raw core.RawNotification
	if err := decoder.Decode(&raw); err != nil {
		return nil, core.MalformedPayload("payload: decode webhook body: "+err.Error(), nil)
	}
	if raw == nil {
		raw = core.RawNotification{}
	}
	return raw, nil
}

// Normalize repairs a decoded notification in place and returns it. The
// "json" sub-object is parsed when embedded as a string, and the known
// sub-document fields inside it are parsed the same way. A field that fails
// to parse keeps its original string value; repair never errors.
func Normalize(raw core.RawNotification) core.RawNotification {
	if raw == nil {
		return core.RawNotification{}
	}
	if text, ok := raw["json"].(string); ok {
		if parsed, ok := ParseEmbedded(text); ok {
			raw["json"] = parsed
		}
	}
	envelope, ok := raw["json"].(map[string]any)
	if !ok {
		return raw
	}
	for _, field := range embeddedFields {
		text, ok := envelope[field].(string)
		if !ok {
			continue
		}
		if parsed, ok := ParseEmbedded(text); ok {
			envelope[field] = parsed
		}
	}
	return raw
}

// ParseEmbedded parses a string-encoded JSON document after the big-integer
// quoting pass. Only object and array documents are substituted; bare
// scalars keep their string form.
func ParseEmbedded(text string) (any, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	decoder := json.NewDecoder(strings.NewReader(QuoteLargeIDs(trimmed)))
	decoder.UseNumber()
	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, false
	}
	switch parsed.(type) {
	case map[string]any, []any:
		return parsed, true
	}
	return nil, false
}

// IDString renders an identifier value as an exact-digit string. Missing or
// empty identifiers yield "".
func IDString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}
