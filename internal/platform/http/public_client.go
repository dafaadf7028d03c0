package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// ErrBlockedAddress はユーザー指定URLの接続先が内部アドレスだった場合に返されます。
var ErrBlockedAddress = errors.New("destination address is not public")

// 公開インターネットに存在しないアドレス帯（netipの判定で漏れるもの）
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"), // CGNAT
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"), // NAT64
}

// NewPublicHTTPClient はユーザーが指定したURLを取得するためのクライアントを作成します。
//
// 名前解決後の接続先をダイヤル時に検査し、ループバック・プライベート・リンクローカル
// （クラウドのメタデータエンドポイントを含む）への接続をErrBlockedAddressで拒否します。
// リダイレクト先やDNSの再バインドも同じ検査を通ります。
// プロキシ経由だと接続先を検査できないため環境変数のプロキシ設定は使用しません。
func NewPublicHTTPClient(timeout time.Duration) *http.Client {
	c := NewHTTPClient(timeout)
	t := c.Transport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			return checkPublicAddress(address)
		},
	}).DialContext
	c.Transport = t
	return c
}

// checkPublicAddress はダイヤル直前の "ip:port" を検査します。
func checkPublicAddress(address string) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip := ap.Addr().Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	for _, p := range nonPublicPrefixes {
		if p.Contains(ip) {
			return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
		}
	}
	return nil
}
