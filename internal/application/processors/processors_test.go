package processors

import (
	"context"
	"errors"
	"testing"

	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/mail"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	require.Equal(t, "[Sites] Hello", Subject("Sites", "Hello"))
	require.Equal(t, "[My Network] Hello", Subject("  My Network ", "Hello"))
	require.Equal(t, "Hello", Subject(" ", "Hello"))
}

func TestRenderTextFailsOnUnknownField(t *testing.T) {
	body, err := renderText("Hi {{.DisplayName}}, {{.SiteName}} is live.", mail.SiteApprovedData{DisplayName: "Jo", SiteName: "Garden"})
	require.NoError(t, err)
	require.Equal(t, "Hi Jo, Garden is live.", body)

	_, err = renderText("{{.Nope}}", mail.SiteApprovedData{})
	require.Error(t, err)
}

type purger struct {
	prefix string
	err    error
}

func (p *purger) DeletePrefix(_ context.Context, prefix string) (int, error) {
	p.prefix = prefix
	return 1, p.err
}

func TestPurgeSiteFiles(t *testing.T) {
	files := &purger{}
	uow, err := NewPurgeSiteFiles(files).Handle(context.Background(), events.PurgeSiteFiles{SiteID: 12})
	require.NoError(t, err)
	require.Nil(t, uow)
	require.Equal(t, "sites/12/", files.prefix)

	files.err = errors.New("throttled")
	_, err = NewPurgeSiteFiles(files).Handle(context.Background(), events.PurgeSiteFiles{SiteID: 12})
	require.ErrorAs(t, err, &errs.RetryableError{})
}
