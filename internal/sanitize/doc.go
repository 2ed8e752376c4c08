// Package sanitize converts field values between the fixed-width text the
// operator edits on the display and the compact text the packet layers take.
//
// A Chain is an ordered list of pure Transforms folded left to right over a
// Value, which is either a scalar string or a list of strings:
//
//	chain := sanitize.NewChain(
//		sanitize.Split("."),
//		sanitize.StripChars("0", "0", sanitize.Left),
//		sanitize.Join("."),
//	)
//	out, err := sanitize.Sanitize("010.000.024.243", chain) // "10.0.24.243"
//
// Primitives are written for scalars; given a list they apply to every
// element. A transform that cannot handle its input returns a *Error.
package sanitize
