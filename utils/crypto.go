package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"

	// Generated keys list RIPEMD160 in their preferred-hash set; the hash
	// must be registered or openpgp.Encrypt rejects them.
	_ "golang.org/x/crypto/ripemd160"
)

// PGPEncrypt encrypts data with an armored PGP public key.
// Used for billing statements sent to students who registered a key.
func PGPEncrypt(data string, publicKey string) (string, error) {
	// Decode the public key
	block, err := armor.Decode(strings.NewReader(publicKey))
	if err != nil {
		return "", fmt.Errorf("failed to decode public key: %v", err)
	}

	// Parse the public key
	entity, err := openpgp.ReadEntity(packet.NewReader(block.Body))
	if err != nil {
		return "", fmt.Errorf("failed to read entity: %v", err)
	}

	// Buffer for the encrypted output
	var encryptedBuf strings.Builder
	armoredWriter, err := armor.Encode(&encryptedBuf, "PGP MESSAGE", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create armored writer: %v", err)
	}

	// Encrypt the data
	plaintext, err := openpgp.Encrypt(armoredWriter, []*openpgp.Entity{entity}, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create encrypt writer: %v", err)
	}

	_, err = plaintext.Write([]byte(data))
	if err != nil {
		return "", fmt.Errorf("failed to write data: %v", err)
	}

	err = plaintext.Close()
	if err != nil {
		return "", fmt.Errorf("failed to close plaintext writer: %v", err)
	}

	err = armoredWriter.Close()
	if err != nil {
		return "", fmt.Errorf("failed to close armored writer: %v", err)
	}

	return encryptedBuf.String(), nil
}

// PGPDecrypt decrypts data with an armored PGP private key
func PGPDecrypt(encryptedData string, privateKey string) (string, error) {
	// Decode the private key
	block, err := armor.Decode(strings.NewReader(privateKey))
	if err != nil {
		return "", fmt.Errorf("failed to decode private key: %v", err)
	}

	// Parse the private key
	entity, err := openpgp.ReadEntity(packet.NewReader(block.Body))
	if err != nil {
		return "", fmt.Errorf("failed to read entity: %v", err)
	}

	// Build the keyring
	keyRing := openpgp.EntityList{entity}

	// Decode the encrypted payload
	encryptedBlock, err := armor.Decode(strings.NewReader(encryptedData))
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted data: %v", err)
	}

	// Decrypt the payload
	md, err := openpgp.ReadMessage(encryptedBlock.Body, keyRing, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %v", err)
	}

	// Read the decrypted body
	decryptedData, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return "", fmt.Errorf("failed to read decrypted data: %v", err)
	}

	return string(decryptedData), nil
}

// HMACSign signs receipt data with an HMAC-SHA256 key
func HMACSign(key, data string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// HMACVerify verifies a receipt signature
func HMACVerify(key, data, signature string) bool {
	expected := HMACSign(key, data)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// GenerateSecureToken generates a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
