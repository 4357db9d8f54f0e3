package cache

import "time"

// KeyPrefix namespaces every entry written by this service.
const KeyPrefix = "cache"

// AnonymousPrincipal is the sentinel used when no authenticated user is
// attached to the request.
const AnonymousPrincipal = "anonymous"

// TTLs per resource class.
const (
	TTLTransactionList = 300 * time.Second
	TTLTransaction     = 600 * time.Second
	TTLCategories      = 3600 * time.Second
	TTLAnalytics       = 900 * time.Second
	TTLUserList        = 300 * time.Second
	TTLUser            = 600 * time.Second
)

// ComposeKey builds the cache key for a request. The key is a literal
// concatenation so that identical (path, query, principal) triples always
// produce the same key and any difference produces a different key:
//
//	cache:/api/transactions?page=1:42
func ComposeKey(path, rawQuery, principalID string) string {
	if principalID == "" {
		principalID = AnonymousPrincipal
	}
	pathAndQuery := path
	if rawQuery != "" {
		pathAndQuery += "?" + rawQuery
	}
	return KeyPrefix + ":" + pathAndQuery + ":" + principalID
}

// PrincipalPattern matches every cached entry belonging to one principal,
// across all paths: cache:*:42
func PrincipalPattern(principalID string) string {
	return KeyPrefix + ":*:" + principalID
}

// DomainPattern matches entries under a path fragment, optionally scoped to
// one principal. An empty principal means any: cache:*/api/analytics*:*
//
// Matching is by substring, so a fragment contained in an unrelated path
// selects that path too. Extra deletions only force a recompute on the next
// read.
func DomainPattern(pathFragment, principalID string) string {
	if principalID == "" {
		principalID = "*"
	}
	return KeyPrefix + ":*" + pathFragment + "*:" + principalID
}
