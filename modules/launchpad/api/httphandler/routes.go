package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/launchpad")

	r.Post("/sales", h.CreateSale)
	r.Get("/sales/:saleId", h.GetSale)
	r.Post("/sales/:saleId/contributions", h.Contribute)
	r.Get("/sales/:saleId/contributions", h.ListContributions)
	r.Post("/sales/:saleId/activate", h.ActivateSale)
	r.Post("/sales/:saleId/pause", h.PauseSale)
	r.Post("/sales/:saleId/resume", h.ResumeSale)
	r.Post("/sales/:saleId/transition", h.TransitionSale)
	r.Post("/sales/:saleId/finalize", h.FinalizeSale)
	r.Post("/sales/:saleId/export", h.ExportSale)
	r.Post("/contributions/:contributionId/refund", h.Refund)

	r.Post("/vesting", h.CreateVestingSchedule)
	r.Get("/vesting/:scheduleId", h.GetVestingSchedule)
	r.Post("/vesting/:scheduleId/release", h.ReleaseVested)
	r.Post("/vesting/:scheduleId/revoke", h.RevokeVesting)

	r.Post("/jobs", h.CreateDistributionJob)
	r.Get("/jobs/:jobId", h.GetJobStatus)
	r.Post("/jobs/:jobId/run-next-batch", h.RunNextBatch)

	r.Get("/tiers/:wallet", h.GetTier)
	r.Put("/stakes/:wallet", h.SetStake)

	return nil
}
