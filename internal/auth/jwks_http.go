package auth

import (
	"encoding/base64"
	"math/big"
	"net/http"

	"github.com/KromaEnergia/api-crm/internal/utils"
)

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// GET /.well-known/jwks.json
func JWKSHandler(w http.ResponseWriter, r *http.Request) {
	k, err := currentKeys()
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	set := jwkSet{Keys: make([]jwk, 0, len(k.pubs))}
	for kid, pub := range k.pubs {
		set.Keys = append(set.Keys, jwk{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	utils.WriteJSON(w, http.StatusOK, set)
}
