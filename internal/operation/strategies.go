package operation

import (
	"context"
	"net/http"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/models"
)

const (
	msgRegenerated     = "Image regenerated successfully!"
	msgRedirecting     = "Image generated successfully! Redirecting..."
	msgRegenerateError = "An error occurred while regenerating. Please try again."
	msgSubmitError     = "Failed to generate image. Please try again."
	msgSubmitFormError = "Failed to submit the form. Please try again."
	msgNavigateError   = "Failed to load the next page. Please try again."
	msgNoForm          = "This page has no form to submit."

	rejectQuestion = "Are you sure you want to reject this coloring page? This action cannot be undone."
)

// regenerate posts the snapshot back to the page and reconciles a patch in
// place, or follows a redirect.
func (c *Controller) regenerate(ctx context.Context, o *op) error {
	o.values.Set("action", models.Regenerate.String())
	header := http.Header{}
	header.Set("X-CSRFToken", o.doc.CSRFToken())
	header.Set("X-Action", models.Regenerate.String())
	target := o.doc.URL().String()

	var resp *client.Response
	err := c.inFlight(ctx, o, func(ctx context.Context) error {
		var err error
		resp, err = c.transport.PostBackground(ctx, target, o.values, header)
		return err
	})
	if err != nil {
		return c.fail(o, models.Failure{Kind: models.TransportFailure, Message: msgRegenerateError}, err)
	}

	switch result := interpretRegenerate(resp).(type) {
	case models.Patch:
		applied := o.doc.ApplyPatch(result)
		c.transition(models.Reconciled)
		c.reporter.Show(100, msgRegenerated)
		c.hideAfter(c.timing.SuccessHide)
		o.log.Info().
			Bool("thumbnail", applied.Thumbnail).
			Int("slots", len(applied.Slots)).
			Bool("prompt", applied.Prompt).
			Msg("Page patched")
		return nil
	case models.Redirect:
		c.transition(models.Reconciled)
		return c.follow(ctx, o, result.URL)
	case models.Failure:
		return c.fail(o, result, nil)
	}
	return c.fail(o, models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse}, nil)
}

// submit posts the generation form to its action. The only success is a
// redirect, taken after a short pause at 100%.
func (c *Controller) submit(ctx context.Context, o *op) error {
	target, err := o.doc.Action()
	if err != nil {
		return c.fail(o, models.Failure{Kind: models.ProtocolViolation, Message: msgNoForm}, err)
	}
	header := http.Header{}
	header.Set("X-CSRFToken", o.doc.CSRFToken())

	var resp *client.Response
	err = c.inFlight(ctx, o, func(ctx context.Context) error {
		var err error
		resp, err = c.transport.PostBackground(ctx, target, o.values, header)
		return err
	})
	if err != nil {
		return c.fail(o, models.Failure{Kind: models.TransportFailure, Message: msgSubmitError}, err)
	}

	switch result := interpretSubmit(resp).(type) {
	case models.Redirect:
		c.transition(models.Reconciled)
		c.reporter.Show(100, msgRedirecting)
		if err := wait(ctx, c.timing.RedirectDelay); err != nil {
			return err
		}
		return c.follow(ctx, o, result.URL)
	case models.Failure:
		return c.fail(o, result, nil)
	}
	return c.fail(o, models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse}, nil)
}

// submitForm is the Confirm and Reject strategy: an ordinary form
// submission that hands control to the resulting page. Reject asks first.
func (c *Controller) submitForm(ctx context.Context, o *op) error {
	if o.intent == models.Reject {
		approved := false
		var err error
		if c.confirmer != nil {
			approved, err = c.confirmer.Confirm(ctx, rejectQuestion)
		}
		if err != nil || !approved {
			c.reporter.Hide()
			o.log.Info().Msg("Operation declined")
			return &Error{Kind: models.UserAborted, Intent: o.intent, Message: "declined", Err: err}
		}
	}

	target, err := o.doc.Action()
	if err != nil {
		return c.fail(o, models.Failure{Kind: models.ProtocolViolation, Message: msgNoForm}, err)
	}

	err = c.inFlight(ctx, o, func(ctx context.Context) error {
		_, err := c.navigator.SubmitForm(ctx, target, o.values)
		return err
	})
	if err != nil {
		return c.fail(o, models.Failure{Kind: models.TransportFailure, Message: msgSubmitFormError}, err)
	}

	// The page that held the indicator is gone.
	c.transition(models.Reconciled)
	c.reporter.Hide()
	o.log.Info().Msg("Form submitted")
	return nil
}

// follow navigates to a redirect target; no local reconciliation happens.
func (c *Controller) follow(ctx context.Context, o *op, target string) error {
	if _, err := c.navigator.Navigate(ctx, target); err != nil {
		return c.fail(o, models.Failure{Kind: models.TransportFailure, Message: msgNavigateError}, err)
	}
	c.reporter.Hide()
	o.log.Info().Str("url", target).Msg("Redirected")
	return nil
}
