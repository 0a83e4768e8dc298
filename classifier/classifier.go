// Package classifier maps free-text service types to asset categories.
package classifier

import (
	"strings"

	"github.com/karsidev/karsi/types"
)

// Keyword sets are tested in order: VM first, then DB, storage as the
// fallback. The ordering is a deliberate tie-break - "sql server"
// contains both a VM and a DB keyword and classifies as VM.
var vmKeywords = []string{
	"vm",
	"compute",
	"virtualmachine",
	"virtual machine",
	"ec2",
	"instance",
	"server",
	"machine",
}

var dbKeywords = []string{
	"db",
	"database",
	"sql",
	"mysql",
	"postgres",
	"oracle",
	"mongodb",
	"redis",
	"rds",
	"cosmos",
	"dynamodb",
}

// Categorize returns the category for a service type string. It is
// total and deterministic: any input, including the empty string,
// yields exactly one of vm, db, or storage.
func Categorize(serviceType string) types.Category {
	s := strings.ToLower(serviceType)

	if matchesAny(s, vmKeywords) {
		return types.CategoryVM
	}
	if matchesAny(s, dbKeywords) {
		return types.CategoryDB
	}
	return types.CategoryStorage
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
