package handlers

import (
	"jam-community-portal/middleware"
	"jam-community-portal/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers the whole HTTP surface. Public routes come first:
// the secured group mounts UserContextMiddleware on "/", which intercepts
// every route registered after it.
func SetupRoutes(
	app *fiber.App,
	jamService *services.JamService,
	voteService *services.VoteService,
	participationService *services.ParticipationService,
	postService *services.PostService,
	certificateService *services.CertificateService,
) {
	// 🔓 Public routes
	app.Get("/jams", jamService.GetAllJams)
	app.Get("/jams/active", jamService.GetActiveJam)
	app.Get("/jams/:id", jamService.GetJamByID)
	app.Get("/jams/:id/themes", jamService.GetJamThemes)
	app.Get("/jams/:id/results", voteService.Results) // blackout-gated until a winner is selected
	app.Get("/jams/:id/posts", postService.GetJamPosts)
	app.Get("/jams/:id/participants", participationService.Roster)
	app.Get("/certificates/categories", certificateService.Categories)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Participation
	secured.Post("/jams/:id/join", participationService.Join)
	secured.Post("/jams/:id/leave", participationService.Leave)
	secured.Get("/jams/:id/participation", participationService.Status)

	// Theme voting
	secured.Post("/jams/:id/themes/:theme_id/vote", voteService.Vote)
	secured.Delete("/jams/:id/themes/:theme_id/vote", voteService.Unvote)
	secured.Get("/jams/:id/votes/me", voteService.MyVotes)

	// Team-finding posts
	secured.Post("/jams/:id/posts", postService.CreatePost)
	secured.Delete("/posts/:id", postService.DeletePost)

	// Certificates (own view + renderer content)
	secured.Get("/users/me/certificates", certificateService.MyCertificates)
	secured.Get("/certificates/:id/content", certificateService.Content)

	// 🔒 Admin-only routes
	admin := secured.Group("/admin", middleware.AdminOnlyMiddleware())

	// Jam CRUD + state
	admin.Post("/jams", jamService.CreateJam)
	admin.Put("/jams/:id", jamService.UpdateJam)
	admin.Delete("/jams/:id", jamService.DeleteJam)
	admin.Patch("/jams/:id/activate", jamService.ActivateJam)
	admin.Patch("/jams/:id/voting", jamService.ToggleVoting)
	admin.Post("/jams/:id/winner", jamService.SelectWinner)
	admin.Get("/jams/:id/results", voteService.AdminResults)

	// Theme catalog
	admin.Post("/jams/:id/themes", jamService.CreateTheme)
	admin.Put("/themes/:id", jamService.UpdateTheme)
	admin.Delete("/themes/:id", jamService.DeleteTheme)

	// Certificate issuance + management
	admin.Post("/certificates/participation", certificateService.IssueParticipation)
	admin.Post("/certificates/recognition", certificateService.IssueRecognition)
	admin.Post("/certificates/custom", certificateService.IssueCustom)
	admin.Post("/jams/:id/certificates/mass", certificateService.MassIssue)
	admin.Get("/jams/:id/certificates", certificateService.JamCertificates)
	admin.Get("/jams/:id/certificates/stats", certificateService.Stats)
	admin.Put("/certificates/:id", certificateService.UpdateCertificate)
	admin.Delete("/certificates/:id", certificateService.DeleteCertificate)
	admin.Post("/certificates/:id/file", certificateService.UploadFile)
	admin.Get("/users/search", certificateService.SearchUsers)
}
