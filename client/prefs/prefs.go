package prefs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ares-safety/ares/utils"
	"golang.org/x/crypto/hkdf"
)

const (
	flagsFileName       = "preferences.json"
	credentialsFileName = "credentials.enc"

	keyDerivationInfo = "ares-secure-preferences"
)

var ErrNoSavedCredentials = errors.New("no saved credentials")

type flags struct {
	FirstLaunch         *bool `json:"first_launch,omitempty"`
	RememberCredentials bool  `json:"remember_credentials"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Store is the on-device preference store. Non-sensitive flags live in a
// plain JSON file; credentials live in a separate AES-256-GCM encrypted file,
// so the two halves are independent key spaces.
type Store struct {
	flagsPath       string
	credentialsPath string
	aead            cipher.AEAD
}

func NewStore(dir, passPhrase string) (*Store, error) {
	err := utils.CreateDirIfNotExist(dir)
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(passPhrase)
	if err != nil {
		return nil, err
	}

	return &Store{
		flagsPath:       filepath.Join(dir, flagsFileName),
		credentialsPath: filepath.Join(dir, credentialsFileName),
		aead:            aead,
	}, nil
}

// ---------------------------------------------------------------------------------//
// Plain half
// --------------------------------------------------------------------------------//

// IsFirstLaunch defaults to true until SetFirstLaunch records otherwise.
func (store *Store) IsFirstLaunch() bool {
	storedFlags := store.readFlags()
	if storedFlags.FirstLaunch == nil {
		return true
	}

	return *storedFlags.FirstLaunch
}

func (store *Store) SetFirstLaunch(firstLaunch bool) error {
	storedFlags := store.readFlags()
	storedFlags.FirstLaunch = &firstLaunch
	return store.writeFlags(storedFlags)
}

func (store *Store) ShouldRememberCredentials() bool {
	return store.readFlags().RememberCredentials
}

func (store *Store) SetRememberCredentials(remember bool) error {
	storedFlags := store.readFlags()
	storedFlags.RememberCredentials = remember
	return store.writeFlags(storedFlags)
}

// ---------------------------------------------------------------------------------//
// Encrypted half
// --------------------------------------------------------------------------------//

func (store *Store) SaveCredentials(email, password string) error {
	plaintext, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	nonce := make([]byte, store.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	sealed := store.aead.Seal(nonce, nonce, plaintext, nil)
	return ioutil.WriteFile(store.credentialsPath, sealed, 0600)
}

func (store *Store) SavedCredentials() (email, password string, err error) {
	sealed, err := ioutil.ReadFile(store.credentialsPath)
	if os.IsNotExist(err) {
		return "", "", ErrNoSavedCredentials
	}
	if err != nil {
		return "", "", err
	}

	if len(sealed) < store.aead.NonceSize() {
		return "", "", fmt.Errorf("credential store is corrupt")
	}

	nonce, ciphertext := sealed[:store.aead.NonceSize()], sealed[store.aead.NonceSize():]
	plaintext, err := store.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", "", fmt.Errorf("unable to decrypt credentials: %v", err)
	}

	savedCredentials := credentials{}
	if err := json.Unmarshal(plaintext, &savedCredentials); err != nil {
		return "", "", err
	}

	return savedCredentials.Email, savedCredentials.Password, nil
}

func (store *Store) ClearCredentials() error {
	err := os.Remove(store.credentialsPath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (store *Store) readFlags() flags {
	storedFlags := flags{}

	content, err := ioutil.ReadFile(store.flagsPath)
	if err != nil {
		return storedFlags
	}

	// A corrupt flags file falls back to defaults rather than failing reads
	json.Unmarshal(content, &storedFlags)
	return storedFlags
}

func (store *Store) writeFlags(storedFlags flags) error {
	content, err := json.Marshal(storedFlags)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(store.flagsPath, content, 0600)
}

func newAEAD(passPhrase string) (cipher.AEAD, error) {
	keyReader := hkdf.New(sha256.New, []byte(passPhrase), nil, []byte(keyDerivationInfo))

	key := make([]byte, 32)
	if _, err := io.ReadFull(keyReader, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
