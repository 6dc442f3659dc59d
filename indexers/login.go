package indexers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/felipemarinho97/torrent-streams/config"
)

// LoginFunc establishes a session for one catalog. The boolean is the
// session signal; a nil error with false means the site rejected the
// credentials.
type LoginFunc func(ctx context.Context, i *Indexer, creds config.Credentials) (bool, error)

var sessionCookieHints = []string{"session", "uid", "pass"}

// loginTakeLoginForm posts the classic takelogin form used by zamunda.net and
// zamunda.se.
func loginTakeLoginForm(ctx context.Context, i *Indexer, creds config.Credentials) (bool, error) {
	endpoint := i.Meta.URL + "/takelogin.php"
	if err := i.requester.Visit(ctx, endpoint); err != nil {
		return false, fmt.Errorf("failed to load login page: %w", err)
	}

	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
		"returnto": {"/"},
	}
	if err := i.requester.PostForm(ctx, endpoint, form, i.Meta.URL+"/login.php"); err != nil {
		return false, fmt.Errorf("failed to submit login form: %w", err)
	}
	return i.hasSessionCookie(), nil
}

// loginTakeLoginQuery is the zamunda.ch variant, which takes the credentials
// in the query string.
func loginTakeLoginQuery(ctx context.Context, i *Indexer, creds config.Credentials) (bool, error) {
	params := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
	}
	if err := i.requester.LoginGet(ctx, i.Meta.URL+"/takelogin.php", params); err != nil {
		return false, fmt.Errorf("failed to send login request: %w", err)
	}
	return i.hasSessionCookie(), nil
}

// loginArenabg reports success whenever the form round trip completes; the
// site gives no reliable signal, so the next search decides.
func loginArenabg(ctx context.Context, i *Indexer, creds config.Credentials) (bool, error) {
	endpoint := i.Meta.URL + "/bg/users/signin/"
	if err := i.requester.Visit(ctx, endpoint); err != nil {
		return false, fmt.Errorf("failed to load login page: %w", err)
	}

	form := url.Values{
		"username_or_email": {creds.Username},
		"password":          {creds.Password},
	}
	if err := i.requester.PostForm(ctx, endpoint, form, endpoint); err != nil {
		return false, fmt.Errorf("failed to submit login form: %w", err)
	}
	return true, nil
}

func (i *Indexer) hasSessionCookie() bool {
	for _, c := range i.requester.Cookies(i.Meta.URL) {
		if containsAny(strings.ToLower(c.Name), sessionCookieHints) {
			return true
		}
	}
	return false
}
