package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rhshell/rh/internal/api"
	"github.com/rhshell/rh/internal/config"
	"github.com/rhshell/rh/internal/creds"
	"github.com/rhshell/rh/internal/instruments"
	"github.com/rhshell/rh/internal/keyring"
	"github.com/rhshell/rh/internal/market"
	"github.com/rhshell/rh/internal/orders"
	"github.com/rhshell/rh/internal/store"
	"github.com/rhshell/rh/internal/watchlist"
)

// passwordReader abstracts terminal password input for testing.
type passwordReader interface {
	ReadPassword() (string, error)
	IsTerminal() bool
}

// terminalReader reads passwords from the terminal using golang.org/x/term.
type terminalReader struct {
	fd int
}

func newTerminalReader(fd int) *terminalReader {
	return &terminalReader{fd: fd}
}

func (r *terminalReader) ReadPassword() (string, error) {
	password, err := term.ReadPassword(r.fd)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// prompter abstracts line-based interactive input for testing.
type prompter interface {
	ReadLine(prompt string) (string, error)
}

type terminalPrompter struct {
	reader io.Reader
	writer io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{reader: r, writer: w}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.writer, prompt)
	scanner := bufio.NewScanner(p.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// appOptions bundles the dependencies every command draws from. Tests
// build one by hand against an httptest server and a temp directory.
type appOptions struct {
	cfg        *config.Config
	configPath string
	blobs      *store.Store
	secrets    keyring.Store
	session    *api.Session
	cache      *instruments.Cache
	market     *market.Service
	orders     *orders.Manager
	watch      *watchlist.List
	jsonMode   bool
	password   passwordReader
	prompt     prompter
}

// loadApp wires real dependencies into opts. It is called from each
// command's PersistentPreRunE so construction stays lazy: `rh --help`
// never touches the config dir or the keyring.
func loadApp(cmd *cobra.Command, opts *appOptions) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	blobs := store.New(config.ConfigDir())

	cr, err := creds.Load(blobs)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	cr.Username = cfg.Username
	if cfg.DeviceToken != "" {
		cr.DeviceToken = cfg.DeviceToken
	}

	client := api.NewClient(cfg.APIBaseURL)
	session := api.NewSession(client, cr)

	cache := instruments.New(client)
	if data, ok, err := blobs.Load(instruments.BlobName); err == nil && ok {
		if err := cache.Merge(data); err != nil {
			log.Warn().Err(err).Msg("discarding corrupted instrument cache")
		}
	}

	var watch *watchlist.List
	if data, _, err := blobs.Load(watchlist.BlobName); err == nil {
		watch = watchlist.Load(data)
	} else {
		watch = watchlist.Load(nil)
	}

	mkt := market.NewService(client)

	opts.cfg = cfg
	opts.configPath = config.ConfigPath()
	opts.blobs = blobs
	opts.secrets = keyring.NewEnvStore(keyring.NewSystemStore())
	opts.session = session
	opts.cache = cache
	opts.market = mkt
	opts.orders = orders.NewManager(client, cache, mkt)
	opts.watch = watch
	opts.jsonMode = GetJSONMode()
	opts.password = newTerminalReader(int(os.Stdin.Fd()))
	opts.prompt = newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	return nil
}

// ensureAuthenticated brings the session to the authenticated state,
// trying saved tokens first and falling back to an interactive login.
func ensureAuthenticated(cmd *cobra.Command, opts *appOptions) error {
	if opts.session.State() == api.Authenticated {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := opts.session.Restore(ctx)
	if err == nil {
		persistTokens(opts)
		return nil
	}
	if !errors.Is(err, api.ErrAuthenticationFailed) {
		// Outages and transport failures are not a reason to re-prompt
		// for credentials.
		return err
	}

	return interactiveLogin(cmd, opts)
}

// interactiveLogin prompts for whatever the saved state is missing:
// username, password, and an MFA code when the server demands one.
func interactiveLogin(cmd *cobra.Command, opts *appOptions) error {
	cr := opts.session.Credentials()

	if cr.Username == "" {
		username, err := opts.prompt.ReadLine("Username: ")
		if err != nil {
			return err
		}
		if username == "" {
			return fmt.Errorf("username is required")
		}
		cr.Username = username
	}

	fromPrompt := false
	if cr.Password == "" {
		if stored, err := opts.secrets.Get(keyring.ServiceName, keyring.KeyPassword); err == nil && stored != "" {
			cr.Password = stored
		} else {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password for %s: ", cr.Username)
			password, err := opts.password.ReadPassword()
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}
			cr.Password = password
			fromPrompt = true
		}
	}

	cr.EnsureDeviceToken()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := opts.session.Login(ctx)
	if errors.Is(err, api.ErrChallengeRequired) {
		code, promptErr := opts.prompt.ReadLine("MFA code: ")
		if promptErr != nil {
			return promptErr
		}
		err = opts.session.SubmitChallenge(ctx, code)
	}
	if err != nil {
		return err
	}

	if fromPrompt {
		if err := opts.secrets.Set(keyring.ServiceName, keyring.KeyPassword, cr.Password); err != nil {
			log.Warn().Err(err).Msg("could not save password to keyring")
		}
	}

	opts.cfg.Username = cr.Username
	opts.cfg.DeviceToken = cr.DeviceToken
	if err := config.Save(opts.configPath, opts.cfg); err != nil {
		log.Warn().Err(err).Msg("could not save config")
	}

	persistTokens(opts)
	return nil
}

// persistTokens writes the current token state back to disk.
func persistTokens(opts *appOptions) {
	if err := creds.Save(opts.blobs, opts.session.Credentials()); err != nil {
		log.Warn().Err(err).Msg("could not save tokens")
	}
}

// persistCache writes the instrument cache back to disk. Called after
// commands that may have resolved new symbols.
func persistCache(opts *appOptions) {
	data, err := opts.cache.Bytes()
	if err != nil {
		log.Warn().Err(err).Msg("could not serialize instrument cache")
		return
	}
	if err := opts.blobs.Save(instruments.BlobName, data); err != nil {
		log.Warn().Err(err).Msg("could not save instrument cache")
	}
}

// persistWatchlist writes the watchlist back to disk.
func persistWatchlist(opts *appOptions) {
	data, err := opts.watch.Bytes()
	if err != nil {
		log.Warn().Err(err).Msg("could not serialize watchlist")
		return
	}
	if err := opts.blobs.Save(watchlist.BlobName, data); err != nil {
		log.Warn().Err(err).Msg("could not save watchlist")
	}
}
