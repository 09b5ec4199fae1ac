package publisher

import (
	"os"

	"github.com/ProCodeJH/blog-automation-sub000/pkg/platform"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/post"
	"github.com/ProCodeJH/blog-automation-sub000/pkg/session"
)

// CredentialsProvider resolves the credentials for one publish. Sources
// are consulted in a fixed order; the first non-empty result wins.
type CredentialsProvider interface {
	Resolve(platformName string, explicit *post.Credentials) (*post.Credentials, error)
}

// envVarFor maps a platform to its credential fallback variable.
var envVarFor = map[string]struct {
	name  string
	token bool
}{
	platform.NameTistory: {name: "TISTORY_BLOG_NAME"},
	platform.NameNaver:   {name: "NAVER_BLOG_ID"},
	platform.NameMedium:  {name: "MEDIUM_TOKEN", token: true},
}

// ChainProvider is the standard resolution order: explicit request
// credentials, then environment variables, then the stored session record.
type ChainProvider struct {
	sessions session.Store
	getenv   func(string) string
}

// NewChainProvider creates the standard provider. sessions may be nil for
// deployments without a session store.
func NewChainProvider(sessions session.Store) *ChainProvider {
	return &ChainProvider{sessions: sessions, getenv: os.Getenv}
}

// Resolve implements CredentialsProvider. It never fails a publish on its
// own: an empty result just means the strategies must rely on browser
// profiles.
func (p *ChainProvider) Resolve(platformName string, explicit *post.Credentials) (*post.Credentials, error) {
	if !explicit.Empty() {
		return explicit, nil
	}

	if env, ok := envVarFor[platformName]; ok {
		if value := p.getenv(env.name); value != "" {
			creds := &post.Credentials{}
			if env.token {
				creds.Token = value
			} else {
				creds.BlogID = value
			}
			return creds, nil
		}
	}

	if p.sessions != nil {
		rec, err := p.sessions.Get(platformName)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.LoggedIn {
			creds := &post.Credentials{BlogID: rec.BlogID}
			if len(rec.Cookies) > 0 {
				creds.Cookies = make(map[string]string, len(rec.Cookies))
				for _, c := range rec.Cookies {
					creds.Cookies[c.Name] = c.Value
				}
			}
			return creds, nil
		}
	}

	return &post.Credentials{}, nil
}
