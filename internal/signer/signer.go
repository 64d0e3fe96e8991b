package signer

// Signer signs repository metadata
type Signer interface {
	// SignDetached creates an armored detached signature (repomd.xml.asc)
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key clients import
	GetPublicKey() ([]byte, error)
}
