package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"sort"
)

// ValidateSignature checks an X-Twilio-Signature header against the request
// URL and form parameters: parameters are concatenated key+value in sorted
// key order after the URL, HMAC-SHA1 signed with the auth token, and
// base64-encoded. An empty auth token skips validation (local development).
func ValidateSignature(authToken, signature, requestURL string, params map[string]string) bool {
	if authToken == "" {
		return true
	}
	if signature == "" {
		return false
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := requestURL
	for _, k := range keys {
		payload += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(payload))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
