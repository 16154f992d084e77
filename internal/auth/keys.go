package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Options configura assinatura dos tokens e o cookie de refresh.
type Options struct {
	PrivateKeyPath string
	KeyID          string
	Issuer         string
	Audience       string
	CookieSecure   bool
}

type keySet struct {
	priv     *rsa.PrivateKey
	pubs     map[string]*rsa.PublicKey // kid -> pub
	kid      string
	issuer   string
	audience string
	secure   bool
}

var (
	keysMu sync.RWMutex
	keys   *keySet
)

var errKeysNotLoaded = errors.New("chave de assinatura não carregada")

// Init lê a chave privada RSA (PKCS#1 ou PKCS#8) do disco.
func Init(opts Options) error {
	if opts.PrivateKeyPath == "" || opts.KeyID == "" || opts.Issuer == "" || opts.Audience == "" {
		return errors.New("faltam JWT_PRIVATE_KEY_PATH/JWT_KID/JWT_ISSUER/JWT_AUDIENCE")
	}
	b, err := os.ReadFile(opts.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("ler chave privada: %w", err)
	}
	priv, err := ParsePrivateKey(b)
	if err != nil {
		return err
	}
	SetSigningKey(priv, opts)
	return nil
}

func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("pem decode da chave privada falhou")
	}
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	k8, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse da chave privada: %w", err)
	}
	priv, ok := k8.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("chave privada não é RSA")
	}
	return priv, nil
}

// SetSigningKey instala a chave ativa. Usado por Init e pelos testes.
func SetSigningKey(priv *rsa.PrivateKey, opts Options) {
	keysMu.Lock()
	defer keysMu.Unlock()
	keys = &keySet{
		priv:     priv,
		pubs:     map[string]*rsa.PublicKey{opts.KeyID: &priv.PublicKey},
		kid:      opts.KeyID,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		secure:   opts.CookieSecure,
	}
}

func currentKeys() (*keySet, error) {
	keysMu.RLock()
	defer keysMu.RUnlock()
	if keys == nil || keys.priv == nil {
		return nil, errKeysNotLoaded
	}
	return keys, nil
}

func (k *keySet) pub(kid string) (*rsa.PublicKey, bool) { p, ok := k.pubs[kid]; return p, ok }

func signMethod() jwt.SigningMethod { return jwt.SigningMethodRS256 }
