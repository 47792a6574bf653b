// Package testutil runs components in tests: T(t).Setup starts a component
// and stops it when the test ends, T(t).Reset returns it to a clean state
// between cases. Backing components live next to the packages they stand
// in for, such as redis/testutil (miniredis) and server/testutil
// (httptest).
package testutil
