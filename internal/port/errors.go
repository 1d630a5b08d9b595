package port

import "errors"

// ErrItemNotFound is returned by catalog operations when no row matches the
// tenant/item pair. A row owned by another tenant is indistinguishable from
// a missing one; cross-tenant reads must fail, not return empty results.
var ErrItemNotFound = errors.New("stock item not found")
