// Package shipping models the shipping labels produced for an order by the
// carrier integration. The paid -> fulfilled transition requires a label in
// the generated status.
package shipping
