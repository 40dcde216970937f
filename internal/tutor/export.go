package tutor

import (
	"time"

	"github.com/fractionmaster/fractionmaster/internal/account"
	"github.com/fractionmaster/fractionmaster/internal/catalog"
	"github.com/fractionmaster/fractionmaster/internal/model"
	"github.com/fractionmaster/fractionmaster/internal/progress"
)

// Export collects every stored account with its derived statistics and
// certificates. Password hashes are left out.
func Export(accounts *account.Store, cat *catalog.Catalog, now time.Time) model.AccountsExport {
	levels := cat.Levels()
	all := accounts.Accounts()

	out := model.AccountsExport{
		ExportedAt: now.UTC(),
		Levels:     len(levels),
		Accounts:   make([]model.AccountResult, 0, len(all)),
	}
	for _, acc := range all {
		certs := progress.Certificates(acc.Profile, acc.Progress, levels, now)
		if certs == nil {
			certs = []model.CertificateDescriptor{}
		}
		out.Accounts = append(out.Accounts, model.AccountResult{
			Username:        acc.Username,
			Profile:         acc.Profile,
			Progress:        acc.Progress,
			CompletedLevels: progress.CompletedCount(levels, acc.Progress),
			PercentComplete: progress.PercentComplete(levels, acc.Progress),
			Certificates:    certs,
		})
	}
	return out
}
