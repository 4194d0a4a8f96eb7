package ports

// PasswordHasher produces and checks one-way salted password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only when the
	// stored hash is malformed.
	Verify(plaintext, hash string) (bool, error)
}
