// Package xunfei talks to the iFLYTEK long-form speech recognition service.
// Two protocol generations are supported: the legacy lfasr API signed with
// an MD5+HMAC digest in the query string, and the current raasr API signed
// over a canonical query string with the signature sent as a header.
package xunfei

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// signLegacy builds the legacy signature:
// Base64(HMAC-SHA1(secret, hexMD5(appID+ts))).
func signLegacy(appID, secret, ts string) string {
	sum := md5.Sum([]byte(appID + ts))
	digest := hex.EncodeToString(sum[:])

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(digest))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// canonicalQuery builds the raasr signing input: drop any "signature" key,
// sort the remaining keys lexicographically, percent-encode keys and values,
// and join as k=v pairs with "&". Insertion order of params never matters.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params[k]))
	}
	return strings.Join(pairs, "&")
}

// signCanonical signs a canonical query string with HMAC-SHA1.
func signCanonical(secret, canonical string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode is RFC 3986 escaping; unlike url.QueryEscape a space
// becomes %20, which is what the signature check on the server expects.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
