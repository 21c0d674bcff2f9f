// Package query translates review search criteria into the flat query
// parameter mapping the remote service expects.
//
// All functions are pure: no state, no side effects, no error conditions.
// Absent or false criteria simply omit their parameter. The emitted key
// set is a bit-exact server contract; see BuildSearchParameters.
package query
