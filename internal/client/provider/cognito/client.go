package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/dmitrijs2005/gophauth/internal/client/provider"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// API is the subset of the Cognito Identity Provider client used here.
// *cognitoidentityprovider.Client satisfies it.
type API interface {
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
	RevokeToken(ctx context.Context, in *cip.RevokeTokenInput, optFns ...func(*cip.Options)) (*cip.RevokeTokenOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newCognitoClientFromConfig = func(cfg aws.Config, optFns ...func(*cip.Options)) API {
		return cip.NewFromConfig(cfg, optFns...)
	}
)

// Client is a provider.Client backed by a Cognito user pool.
type Client struct {
	provider.Hub

	api    API
	cfg    Config
	tokens *TokenStore
	log    logging.Logger
	now    func() time.Time

	// mu serializes every read-modify-write of the stored tokens.
	mu sync.Mutex
}

// New validates cfg, builds the AWS SDK client and returns a Client whose
// tokens are kept in db.
func New(ctx context.Context, cfg Config, db *sql.DB, log logging.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// User pool client APIs are unsigned; an emulator endpoint still wants
	// some credentials to be present.
	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if cfg.Endpoint != "" {
		creds = credentials.NewStaticCredentialsProvider("local", "local", "")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newCognitoClientFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithAPI(api, cfg, NewTokenStore(db, cfg.ClientID), log), nil
}

// NewWithAPI wires a Client around an existing API implementation.
func NewWithAPI(api API, cfg Config, tokens *TokenStore, log logging.Logger) *Client {
	c := &Client{
		api:    api,
		cfg:    cfg,
		tokens: tokens,
		log:    log.With("component", "cognito", "user_pool", cfg.UserPoolID),
		now:    time.Now,
	}
	c.DispatchAuth(provider.EventConfigured, "", nil)
	return c
}

// pendingEvents collects events raised while c.mu is held; flush dispatches
// them once the lock is released.
type pendingEvents []provider.Event

func (p *pendingEvents) add(name, message string, data any) {
	*p = append(*p, provider.Event{Channel: provider.AuthChannel, Name: name, Message: message, Data: data})
}

func (c *Client) flush(p *pendingEvents) {
	for _, ev := range *p {
		c.Dispatch(ev)
	}
}

func (c *Client) SignIn(ctx context.Context, username, password string) (provider.User, error) {
	params := map[string]string{"USERNAME": username, "PASSWORD": password}
	if hash := c.secretHash(username); hash != "" {
		params["SECRET_HASH"] = hash
	}

	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(c.cfg.ClientID),
		AuthParameters: params,
	})
	if err != nil {
		err = mapError("sign in", err)
		c.DispatchAuth(provider.EventSignInFailure, err.Error(), err)
		return nil, err
	}

	if out.ChallengeName != "" {
		return &User{
			username:  username,
			challenge: string(out.ChallengeName),
			session:   aws.ToString(out.Session),
		}, nil
	}

	if out.AuthenticationResult == nil {
		err := fmt.Errorf("sign in: %w: empty authentication result", provider.ErrNotAuthorized)
		c.DispatchAuth(provider.EventSignInFailure, err.Error(), err)
		return nil, err
	}

	res := out.AuthenticationResult
	tokens := &Tokens{
		Username:     username,
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
	}
	if name := usernameFromIDToken(tokens.IDToken); name != "" {
		tokens.Username = name
	}

	c.mu.Lock()
	err = c.tokens.Save(ctx, *tokens)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	user := &User{username: tokens.Username, tokens: tokens}
	c.log.Info(ctx, "signed in", "username", user.username)
	c.DispatchAuth(provider.EventSignIn, "", user)
	return user, nil
}

// SignOut forgets the local session. With opts.Global every session of the
// user is revoked through GlobalSignOut; otherwise only this device's refresh
// token is revoked. Local tokens are cleared even when the remote call fails.
func (c *Client) SignOut(ctx context.Context, opts provider.SignOutOptions) error {
	var events pendingEvents
	defer c.flush(&events)

	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	var remoteErr error
	if t != nil {
		if opts.Global {
			_, remoteErr = c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(t.AccessToken)})
			remoteErr = mapError("global sign out", remoteErr)
		} else if t.RefreshToken != "" {
			in := &cip.RevokeTokenInput{ClientId: aws.String(c.cfg.ClientID), Token: aws.String(t.RefreshToken)}
			if c.cfg.ClientSecret != "" {
				in.ClientSecret = aws.String(c.cfg.ClientSecret)
			}
			_, remoteErr = c.api.RevokeToken(ctx, in)
			remoteErr = mapError("revoke token", remoteErr)
		}
	}

	if err := c.tokens.Clear(ctx); err != nil {
		return errors.Join(remoteErr, fmt.Errorf("sign out: %w", err))
	}

	events.add(provider.EventSignOut, "", nil)
	return remoteErr
}

func (c *Client) SignUp(ctx context.Context, params provider.SignUpParams) (*provider.SignUpResult, error) {
	names := make([]string, 0, len(params.Attributes))
	for name := range params.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	attrs := make([]types.AttributeType, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, types.AttributeType{Name: aws.String(name), Value: aws.String(params.Attributes[name])})
	}

	in := &cip.SignUpInput{
		ClientId:       aws.String(c.cfg.ClientID),
		Username:       aws.String(params.Username),
		Password:       aws.String(params.Password),
		UserAttributes: attrs,
	}
	if hash := c.secretHash(params.Username); hash != "" {
		in.SecretHash = aws.String(hash)
	}

	out, err := c.api.SignUp(ctx, in)
	if err != nil {
		return nil, mapError("sign up", err)
	}

	known := make(map[string]string, len(params.Attributes)+1)
	for k, v := range params.Attributes {
		known[k] = v
	}
	known[provider.AttrEmail] = params.Username

	user := &User{username: params.Username, attributes: known}
	c.DispatchAuth(provider.EventSignUp, "", user)

	return &provider.SignUpResult{User: user, UserConfirmed: out.UserConfirmed}, nil
}

// CurrentAuthenticatedUser returns the user of the stored session, refreshing
// its access token first when it has expired.
func (c *Client) CurrentAuthenticatedUser(ctx context.Context) (provider.User, error) {
	var events pendingEvents
	defer c.flush(&events)

	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tokens.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if t == nil {
		return nil, provider.ErrNoCurrentUser
	}

	if c.expiresWithin(t.AccessToken, 0) {
		if t, err = c.refreshLocked(ctx, t, &events); err != nil {
			return nil, err
		}
	}

	out, err := c.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(t.AccessToken)})
	if err != nil {
		err = mapError("current user", err)
		if errors.Is(err, provider.ErrNotAuthorized) {
			// revoked elsewhere, e.g. a global sign-out from another device
			if clearErr := c.tokens.Clear(ctx); clearErr != nil {
				c.log.Warn(ctx, "failed to clear revoked tokens", "error", clearErr.Error())
			}
		}
		return nil, err
	}

	return &User{
		username:   aws.ToString(out.Username),
		tokens:     t,
		attributes: attributeMap(out.UserAttributes),
	}, nil
}

// UserAttributes fetches the attributes of user. A user without a session,
// such as a fresh sign-up, reports the attributes it was registered with.
func (c *Client) UserAttributes(ctx context.Context, user provider.User) (map[string]string, error) {
	u, ok := user.(*User)
	if !ok || u == nil {
		return nil, fmt.Errorf("user attributes: %w: foreign user %T", provider.ErrInvalidParameter, user)
	}
	if u.tokens == nil {
		return u.attributesCopy(), nil
	}

	out, err := c.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(u.tokens.AccessToken)})
	if err != nil {
		return nil, mapError("user attributes", err)
	}
	return attributeMap(out.UserAttributes), nil
}

// RefreshIfNeeded refreshes the stored session when its access token expires
// within leeway. Rejected refreshes clear the session and raise
// tokenRefresh_failure; transport failures are returned and leave the session
// in place so a later attempt can succeed.
func (c *Client) RefreshIfNeeded(ctx context.Context, leeway time.Duration) error {
	var events pendingEvents
	defer c.flush(&events)

	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.tokens.Load(ctx)
	if err != nil || t == nil {
		return err
	}
	if !c.expiresWithin(t.AccessToken, leeway) {
		return nil
	}
	_, err = c.refreshLocked(ctx, t, &events)
	return err
}

func (c *Client) refreshLocked(ctx context.Context, t *Tokens, events *pendingEvents) (*Tokens, error) {
	if t.RefreshToken == "" {
		return nil, c.refreshFailed(ctx, fmt.Errorf("refresh: %w: no refresh token", provider.ErrNotAuthorized), events)
	}

	params := map[string]string{"REFRESH_TOKEN": t.RefreshToken}
	if hash := c.secretHash(t.Username); hash != "" {
		params["SECRET_HASH"] = hash
	}

	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeRefreshTokenAuth,
		ClientId:       aws.String(c.cfg.ClientID),
		AuthParameters: params,
	})
	if err != nil {
		err = mapError("refresh", err)
		if errors.Is(err, provider.ErrUnavailable) {
			return nil, err
		}
		return nil, c.refreshFailed(ctx, err, events)
	}
	if out.AuthenticationResult == nil {
		return nil, c.refreshFailed(ctx, fmt.Errorf("refresh: %w: empty authentication result", provider.ErrNotAuthorized), events)
	}

	res := out.AuthenticationResult
	next := &Tokens{
		Username:     t.Username,
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: t.RefreshToken,
	}
	// Cognito only rotates the refresh token when rotation is enabled.
	if rt := aws.ToString(res.RefreshToken); rt != "" {
		next.RefreshToken = rt
	}

	if err := c.tokens.Save(ctx, *next); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	c.log.Debug(ctx, "tokens refreshed", "username", next.Username)
	events.add(provider.EventTokenRefresh, "", nil)
	return next, nil
}

func (c *Client) refreshFailed(ctx context.Context, err error, events *pendingEvents) error {
	c.log.Warn(ctx, "token refresh failed", "error", err.Error())
	if clearErr := c.tokens.Clear(ctx); clearErr != nil {
		c.log.Warn(ctx, "failed to clear tokens", "error", clearErr.Error())
	}
	events.add(provider.EventTokenRefreshFailure, err.Error(), err)
	return err
}

// expiresWithin treats unreadable tokens as expired.
func (c *Client) expiresWithin(token string, leeway time.Duration) bool {
	exp, err := expiresAt(token)
	if err != nil {
		return true
	}
	return !c.now().Add(leeway).Before(exp)
}

// secretHash computes SECRET_HASH for app clients with a secret.
func (c *Client) secretHash(username string) string {
	if c.cfg.ClientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.ClientSecret))
	mac.Write([]byte(username + c.cfg.ClientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func attributeMap(attrs []types.AttributeType) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	return m
}
