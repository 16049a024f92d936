package domain

import (
	"strings"
	"testing"

	"nutriplan/testutil"
)

// TestDomainDoesNotImportInternal enforces that the domain layer stays free of
// implementation packages so every store and backend can depend on it.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must not depend on internal packages")
}

// TestDomainHasNoThirdPartyImports keeps the domain package on the standard library.
func TestDomainHasNoThirdPartyImports(t *testing.T) {
	thirdParty := func(path string) bool {
		first := strings.SplitN(path, "/", 2)[0]
		return strings.Contains(first, ".")
	}
	testutil.AssertNoDirectImports(t, ".", thirdParty, "domain imports only the standard library")
}
