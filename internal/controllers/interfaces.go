package controllers

import (
	"net/url"
)

//go:generate mockery --case=snake --name=ClientCtrl
//go:generate mockery --case=snake --name=CryptoCtrl
//go:generate mockery --case=snake --name=TgmCtrl

type ClientCtrl interface {
	Send(method string, url *url.URL, headers map[string]string, body []byte) (int, []byte, error)
}

type CryptoCtrl interface {
	Signature(payload []byte) string
	Verify(payload []byte, signature string) bool
	VerifySecret(got string) bool
	SecretConfigured() bool
	SignatureConfigured() bool
}

type TgmCtrl interface {
	Send(text string) error
}
