package sanitize

// Chain pairs for the display layouts the catalog uses. Each ToProtocol
// chain is the inverse of its ToDisplay partner over the layout's domain.

var (
	// IPv4ToProtocol turns "010.000.024.243" into "10.0.24.243".
	IPv4ToProtocol = NewChain(
		Split("."),
		StripChars("0", "0", Left),
		Uint(10, 8),
		Join("."),
	)

	// IPv4ToDisplay turns "10.0.24.243" into "010.000.024.243".
	IPv4ToDisplay = NewChain(
		Split("."),
		PadTo(3, '0', Left),
		Join("."),
	)

	// MACToProtocol turns "0a1b2c-3d4e5f" into "0a:1b:2c:3d:4e:5f".
	MACToProtocol = NewChain(
		RemoveChar("-"),
		RemoveChar(":"),
		InsertEvery(":", 2),
	)

	// MACToDisplay turns "0A:1B:2C:3D:4E:5F" into "0a1b2c-3d4e5f".
	MACToDisplay = NewChain(
		RemoveChar(":"),
		Lower(),
		InsertAt("-", 6),
	)
)

// HexPrefix is the literal that leads hex field templates.
const HexPrefix = "0x"

// HexToProtocol turns "0x0800" into "2048", rejecting values wider than bits.
func HexToProtocol(bits int) Chain {
	return NewChain(
		Trim(len(HexPrefix), Left),
		Uint(16, bits),
	)
}

// HexToDisplay turns "2048" (or "0x800") into "0x0800" with digits hex digits.
func HexToDisplay(digits, bits int) Chain {
	return NewChain(
		ParseAny(bits),
		FormatUint(16),
		PadTo(digits, '0', Left),
		InsertAt(HexPrefix, 0),
	)
}

// DecimalToProtocol turns "00064" into "64", rejecting values wider than bits.
func DecimalToProtocol(bits int) Chain {
	return NewChain(Uint(10, bits))
}

// DecimalToDisplay turns "64" into "00064" for a width digit field.
func DecimalToDisplay(width, bits int) Chain {
	return NewChain(
		ParseAny(bits),
		PadTo(width, '0', Left),
	)
}
