// Package http はアウトバウンドHTTP呼び出し用の共通クライアントを提供します。
package http

import (
	"errors"
	"net"
	"net/http"
	"time"
)

// MaxRedirects はプロフィール画像URLの取得時に追跡するリダイレクトの上限です。
const MaxRedirects = 3

// ErrTooManyRedirects はリダイレクトがMaxRedirectsを超えた場合に返されます。
var ErrTooManyRedirects = errors.New("too many redirects")

// NewHTTPClient はオブジェクトストレージと画像URL取得で共有するHTTPクライアントを作成します。
//
// http.DefaultClientにはタイムアウトがないため使用しないこと。
// timeoutが0以下の場合は10秒を使用します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: t,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}
