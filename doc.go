// Package certmail renders personalized certificates to PDF with headless
// Chrome and emails each one to its recipient.
//
// # Quick Start
//
// Build the pipeline once and reuse it for every request:
//
//	loader, err := certmail.NewAssetLoader("", "assets")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache := certmail.NewAssetCache(loader)
//
//	engine := certmail.NewEngine()
//	defer engine.Close()
//
//	gen := certmail.NewGenerator(cache, engine)
//	delivery := certmail.NewDeliveryService(certmail.MailConfig{
//	    SMTPHost:     "smtp.gmail.com",
//	    SMTPPort:     587,
//	    SMTPUser:     os.Getenv("SMTP_USER"),
//	    SMTPPassword: os.Getenv("SMTP_PASS"),
//	})
//	batch := certmail.NewBatch(gen, delivery)
//
//	summary, err := batch.Run(ctx, records)
//
// # Pipeline
//
// Each record goes through three steps, strictly in order:
//
//  1. Generation: the template is filled with the escaped name, the page
//     size and the background data URL, then printed to a single-page PDF.
//  2. Delivery: the PDF is attached to the certificate email and sent once.
//  3. Cleanup: the PDF is deleted whatever the outcome.
//
// A render or delivery failure is recorded against its record and the batch
// moves on. Configuration errors and a missing background abort the batch.
//
// # Single Records
//
// Batch.Issue generates synchronously and delivers in the background, so an
// HTTP handler can answer as soon as the document exists. Call Batch.Wait
// before exiting to let pending deliveries finish.
//
// # Concurrency
//
// An Engine renders one document at a time. Use EnginePool to render several
// single-record requests in parallel, one browser per slot.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package certmail
