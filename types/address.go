package types

// Address identifies a party holding or entitled to funds: the submitter
// of a claim, a challenger, or the registry's own escrow account.
// Addresses are opaque identity strings; the registry never interprets
// them beyond equality.
type Address string

// IsAddressEmpty returns true if the address is the zero value
func IsAddressEmpty(a Address) bool {
	return a == ""
}

// AddressEqual compares two addresses
func AddressEqual(a, b Address) bool {
	return a == b
}

func (a Address) String() string {
	return string(a)
}
