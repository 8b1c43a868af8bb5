package config

import "time"

type TokenConf struct {
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	AccessTokenSecret  string
	RefreshTokenSecret string
}

func NewTokenConf() *TokenConf {
	auth := GetConfig().Auth
	return &TokenConf{
		AccessTokenTTL:     time.Duration(auth.AccessTokenTTLMinutes) * time.Minute,
		RefreshTokenTTL:    time.Duration(auth.RefreshTokenTTLHours) * time.Hour,
		AccessTokenSecret:  auth.AccessTokenSecret,
		RefreshTokenSecret: auth.RefreshTokenSecret,
	}
}
