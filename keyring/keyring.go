// Package keyring provides secure password storage for remote desktops.
// It uses the system keyring when available, falling back to an encrypted
// local file when not.
package keyring

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

const (
	// ServiceName is the identifier used in the system keyring.
	ServiceName = "vncviewer"

	probeAccount = "vncviewer-probe"
)

// ErrNotFound is returned when no password is stored for an account.
var ErrNotFound = common.ErrCredentialsNotFound

// Credentials stores passwords per account. It implements
// common.CredentialStore.
type Credentials struct {
	service string

	mu        sync.RWMutex
	useLocal  bool
	localFile string
	key       []byte
	local     map[string]string
}

// New returns a store for service backed by the system keyring, or by the
// encrypted file at localFile when the keyring cannot be used.
func New(service, localFile string) *Credentials {
	c := &Credentials{
		service:   service,
		localFile: localFile,
	}

	if err := keyring.Set(service, probeAccount, "probe"); err != nil {
		common.LogWarn("System keyring unavailable, using local storage: %v", err)
		c.switchToLocal()
	} else {
		_ = keyring.Delete(service, probeAccount)
	}
	return c
}

// NewLocal returns a store that always uses the encrypted file at localFile
// sealed with key, which must be 32 bytes.
func NewLocal(localFile string, key []byte) (*Credentials, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", common.ErrEncryption, chacha20poly1305.KeySize)
	}
	c := &Credentials{
		service:   ServiceName,
		localFile: localFile,
		useLocal:  true,
		key:       key,
		local:     make(map[string]string),
	}
	c.loadLocal()
	return c, nil
}

var (
	defaultOnce  sync.Once
	defaultStore *Credentials
)

// Default returns the process-wide store, created on first use.
func Default() *Credentials {
	defaultOnce.Do(func() {
		localFile := common.CredentialsFileName
		if dir, err := common.GetConfigDir(); err == nil {
			localFile = filepath.Join(dir, common.CredentialsFileName)
		}
		defaultStore = New(ServiceName, localFile)
	})
	return defaultStore
}

// AccountFor returns the keyring account of a connection: "host:port".
func AccountFor(conn *connection.Connection) string {
	return conn.Address()
}

// Local reports whether the store uses the encrypted file.
func (c *Credentials) Local() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.useLocal
}

// switchToLocal must be called with c.mu held or before c is shared.
func (c *Credentials) switchToLocal() {
	if c.useLocal {
		return
	}
	c.useLocal = true
	c.key = deriveKey()
	c.local = make(map[string]string)
	c.loadLocal()
}

func deriveKey() []byte {
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("%s-%s-%s-%d", ServiceName, hostname, getMachineID(), os.Getuid())
	hash := sha256.Sum256([]byte(keyData))
	return hash[:]
}

func getMachineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return "default-machine-id"
}

func (c *Credentials) loadLocal() {
	data, err := os.ReadFile(c.localFile)
	if err != nil {
		return
	}

	decrypted, err := decrypt(c.key, data)
	if err != nil {
		common.LogWarn("Ignoring unreadable credentials file: %v", err)
		return
	}

	if err := json.Unmarshal(decrypted, &c.local); err != nil {
		common.LogWarn("Ignoring malformed credentials file: %v", err)
	}
}

// saveLocal must be called with c.mu held.
func (c *Credentials) saveLocal() error {
	data, err := json.Marshal(c.local)
	if err != nil {
		return err
	}

	encrypted, err := encrypt(c.key, data)
	if err != nil {
		return err
	}

	if err := common.AtomicWrite(c.localFile, encrypted, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	return nil
}

func encrypt(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(sealed)), nil
}

func decrypt(key, data []byte) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return plaintext, nil
}

// Store saves the password for account.
func (c *Credentials) Store(account, password string) error {
	if account == "" {
		return errors.New("account cannot be empty")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.useLocal {
		err := keyring.Set(c.service, account, password)
		if err == nil {
			return nil
		}
		common.LogWarn("Keyring write failed, falling back to local storage: %v", err)
		c.switchToLocal()
	}

	c.local[account] = password
	return c.saveLocal()
}

// Get retrieves the password for account.
func (c *Credentials) Get(account string) (string, error) {
	if account == "" {
		return "", errors.New("account cannot be empty")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.useLocal {
		password, err := keyring.Get(c.service, account)
		if err != nil {
			return "", ErrNotFound
		}
		return password, nil
	}

	password, ok := c.local[account]
	if !ok {
		return "", ErrNotFound
	}
	return password, nil
}

// Delete removes the password for account. Deleting a missing account is not
// an error.
func (c *Credentials) Delete(account string) error {
	if account == "" {
		return errors.New("account cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.useLocal {
		if err := keyring.Delete(c.service, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
		}
		return nil
	}

	if _, ok := c.local[account]; !ok {
		return nil
	}
	delete(c.local, account)
	return c.saveLocal()
}

// Exists checks if a password is stored for account.
func (c *Credentials) Exists(account string) bool {
	_, err := c.Get(account)
	return err == nil
}

// Store saves a password in the default store.
func Store(account, password string) error {
	return Default().Store(account, password)
}

// Get retrieves a password from the default store.
func Get(account string) (string, error) {
	return Default().Get(account)
}

// Delete removes a password from the default store.
func Delete(account string) error {
	return Default().Delete(account)
}

// Exists checks the default store for account.
func Exists(account string) bool {
	return Default().Exists(account)
}
