package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hypn4/salesforce-mcp-server/pkg/logging"
)

// InstanceURLHeader lets a caller direct verification (and subsequent API
// calls) at a specific Salesforce instance instead of the configured one.
const InstanceURLHeader = "X-Salesforce-Instance-URL"

const verifyTimeout = 30 * time.Second

// Verifier validates Salesforce access tokens against the instance's
// userinfo endpoint. Verification is total: any failure degrades to a
// guest identity rather than an error, so MCP discovery requests succeed
// without credentials.
type Verifier struct {
	defaultInstanceURL string

	clientOnce sync.Once
	client     *http.Client

	closeOnce sync.Once

	// group collapses concurrent verifications of the same token into a
	// single upstream call.
	group singleflight.Group
}

// NewVerifier creates a verifier targeting defaultInstanceURL unless a
// request overrides it.
func NewVerifier(defaultInstanceURL string) *Verifier {
	return &Verifier{
		defaultInstanceURL: strings.TrimRight(defaultInstanceURL, "/"),
	}
}

func (v *Verifier) httpClient() *http.Client {
	v.clientOnce.Do(func() {
		v.client = &http.Client{Timeout: verifyTimeout}
	})
	return v.client
}

// userinfoResponse is the subset of the Salesforce userinfo payload the
// verifier cares about.
type userinfoResponse struct {
	UserID            string `json:"user_id"`
	OrganizationID    string `json:"organization_id"`
	PreferredUsername string `json:"preferred_username"`
	Sub               string `json:"sub"`
}

// VerifyToken resolves a bearer token to an identity. It never returns
// nil: empty or unverifiable tokens yield a guest identity.
func (v *Verifier) VerifyToken(token, instanceURL string) *Identity {
	instanceURL = strings.TrimRight(strings.TrimSpace(instanceURL), "/")
	if instanceURL == "" {
		instanceURL = v.defaultInstanceURL
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return GuestIdentity(instanceURL)
	}

	key := instanceURL + "|" + token
	result, err, _ := v.group.Do(key, func() (interface{}, error) {
		return v.fetchUserInfo(token, instanceURL)
	})
	if err != nil {
		logging.Debug("Auth", "Token verification failed for %s: %v", TokenPreview(token), err)
		return GuestIdentity(instanceURL)
	}

	info := result.(*userinfoResponse)
	username := info.PreferredUsername
	if username == "" {
		username = info.Sub
	}
	logging.Debug("Auth", "Verified token %s for user %s", TokenPreview(token), info.UserID)

	return &Identity{
		Token:         token,
		ClientID:      "salesforce",
		Authenticated: true,
		Claims: Claims{
			UserID:          info.UserID,
			OrgID:           info.OrganizationID,
			Username:        username,
			InstanceURL:     instanceURL,
			SalesforceToken: token,
		},
	}
}

func (v *Verifier) fetchUserInfo(token, instanceURL string) (*userinfoResponse, error) {
	url := instanceURL + "/services/oauth2/userinfo"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	// A well-formed userinfo response always identifies the user and the
	// org; anything else is malformed and must not authenticate.
	if info.UserID == "" || info.OrganizationID == "" {
		return nil, fmt.Errorf("userinfo response missing user_id or organization_id")
	}
	return &info, nil
}

// Middleware attaches the verified (or guest) identity to every request.
// Guests pass through so that unauthenticated discovery still works.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		identity := v.VerifyToken(token, r.Header.Get(InstanceURLHeader))
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Close releases the verifier's HTTP resources. Safe to call more than
// once.
func (v *Verifier) Close() {
	v.closeOnce.Do(func() {
		if v.client != nil {
			v.client.CloseIdleConnections()
		}
	})
}
