package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// RunGenKeeperKey generates a 32-byte key and prints a base64key keeper URI
// suitable for KEEPER_URI. The local keeper is meant for development and
// single-host deployments; production setups should point KEEPER_URI at a
// real secrets manager (e.g., hashivault://).
func RunGenKeeperKey(writer io.Writer) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate keeper key: %w", err)
	}

	encoded := base64.URLEncoding.EncodeToString(key)
	_, _ = fmt.Fprintf(writer, "KEEPER_URI=\"base64key://%s\"\n", encoded)
	return nil
}
