package main

import (
	"errors"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/config"
)

// services is the wired pipeline shared by every subcommand.
type services struct {
	Batch    *certmail.Batch
	Assets   *certmail.AssetCache
	Delivery *certmail.DeliveryService

	closers []func() error
}

// Close waits for detached deliveries, then shuts the browsers down.
func (s *services) Close() error {
	s.Batch.Wait()
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildServices wires assets, browsers, generator and delivery from the
// loaded configuration. Browsers start lazily on the first render.
func buildServices(env *Environment) (*services, error) {
	cfg := env.Config

	loader, err := certmail.NewAssetLoader(cfg.Paths.Templates, cfg.Paths.Assets)
	if err != nil {
		return nil, err
	}

	opts := []certmail.Option{
		certmail.WithLogger(env.Logger),
		certmail.WithTimeout(cfg.Render.Timeout),
		certmail.WithBrowserBin(cfg.Render.BrowserBin),
		certmail.WithNoSandbox(cfg.Render.NoSandbox),
		certmail.WithSize(cfg.Certificate.Width, cfg.Certificate.Height),
		certmail.WithTempDir(cfg.Paths.Temp),
		certmail.WithAssetNames(cfg.Certificate.Template, cfg.Certificate.Background),
		certmail.WithFrom(cfg.Sender()),
		certmail.WithSendRate(cfg.Email.SendRate),
	}

	cache := certmail.NewAssetCache(loader, opts...)
	pool := certmail.NewEnginePool(certmail.ResolvePoolSize(cfg.Render.Engines), opts...)
	gen := certmail.NewGenerator(cache, pool, opts...)
	delivery := certmail.NewDeliveryService(mailConfig(cfg), opts...)

	env.Logger.Debug().
		Int("engines", pool.Size()).
		Str("provider", cfg.Email.Provider).
		Msg("pipeline ready")

	return &services{
		Batch:    certmail.NewBatch(gen, delivery, opts...),
		Assets:   cache,
		Delivery: delivery,
		closers:  []func() error{pool.Close},
	}, nil
}

func mailConfig(cfg *config.Config) certmail.MailConfig {
	return certmail.MailConfig{
		Provider:     cfg.Email.Provider,
		SMTPHost:     cfg.Email.SMTP.Host,
		SMTPPort:     cfg.Email.SMTP.Port,
		SMTPUser:     cfg.Email.SMTP.User,
		SMTPPassword: cfg.Email.SMTP.Password,
		BrevoAPIKey:  cfg.Email.Brevo.APIKey,
	}
}
