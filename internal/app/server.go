package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/agritunisie/connect/internal/api/handlers"
	"github.com/agritunisie/connect/internal/api/httpjson"
	"github.com/agritunisie/connect/internal/api/middlewares"
	"github.com/agritunisie/connect/internal/config"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
	"github.com/agritunisie/connect/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, log zerolog.Logger, store core.Store, meteoSvc *services.MeteoService, conseilSvc *services.ConseilService) *Server {
	rp := httpjson.NewResponder(log, cfg.Development())
	secret := []byte(cfg.JWTSecret)

	authHandler := handlers.NewAuthHandler(rp, store, secret, cfg.JWTExpiry)
	parcelleHandler := handlers.NewParcelleHandler(rp, store)
	cultureHandler := handlers.NewCultureHandler(rp, store)
	elevageHandler := handlers.NewElevageHandler(rp, store)
	prixHandler := handlers.NewPrixHandler(rp, store)
	meteoHandler := handlers.NewMeteoHandler(rp, meteoSvc)
	communauteHandler := handlers.NewCommunauteHandler(rp, store)
	conseilHandler := handlers.NewConseilHandler(rp, conseilSvc)

	authenticate := middlewares.Authenticate(rp, secret)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middlewares.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		rp.Message(w, http.StatusOK, "Bienvenue sur l'API AgriTunisie Connect!")
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
		})

		api.Route("/parcelles", func(parcelles chi.Router) {
			parcelles.Use(authenticate)
			parcelles.Post("/", parcelleHandler.Create)
			parcelles.Get("/user", parcelleHandler.ListForUser)
			parcelles.Get("/{id}", parcelleHandler.Get)
			parcelles.Put("/{id}", parcelleHandler.Update)
			parcelles.Delete("/{id}", parcelleHandler.Delete)
		})

		api.Route("/cultures", func(cultures chi.Router) {
			cultures.Get("/", cultureHandler.List)
			cultures.Get("/{id}", cultureHandler.Get)

			cultures.Group(func(admin chi.Router) {
				admin.Use(authenticate, middlewares.RequireRole(rp, models.RoleAdmin))
				admin.Post("/", cultureHandler.Create)
				admin.Put("/{id}", cultureHandler.Update)
				admin.Delete("/{id}", cultureHandler.Delete)
			})
		})

		api.Route("/elevage", func(elevage chi.Router) {
			elevage.Get("/types", elevageHandler.ListTypes)

			elevage.Group(func(animaux chi.Router) {
				animaux.Use(authenticate)
				animaux.Post("/animaux", elevageHandler.CreateAnimal)
				animaux.Get("/animaux", elevageHandler.ListAnimaux)
				animaux.Get("/animaux/{id}", elevageHandler.GetAnimal)
				animaux.Put("/animaux/{id}", elevageHandler.UpdateAnimal)
				animaux.Delete("/animaux/{id}", elevageHandler.DeleteAnimal)
			})
		})

		api.Route("/prix", func(prix chi.Router) {
			prix.Get("/observations", prixHandler.SearchObservations)
			prix.Get("/produits", prixHandler.ListProduits)
			prix.Get("/regions", prixHandler.ListRegions)

			prix.Group(func(collecte chi.Router) {
				collecte.Use(authenticate, middlewares.RequireRole(rp, models.RoleAdmin, models.RoleCollecteur))
				collecte.Post("/observations", prixHandler.AddObservation)
			})
		})

		api.Route("/meteo", func(meteo chi.Router) {
			meteo.Use(authenticate)
			meteo.Get("/previsions", meteoHandler.Previsions)
			meteo.Get("/historique", meteoHandler.Historique)
		})

		api.Route("/ia", func(ia chi.Router) {
			ia.Use(authenticate)
			ia.Post("/conseil-culture", conseilHandler.ConseilCulture)
			ia.Post("/optimiser-ration", conseilHandler.OptimiserRation)
			ia.Post("/resumer-actualite", conseilHandler.ResumerActualite)
		})

		api.Route("/communaute", func(comm chi.Router) {
			comm.Get("/categories", communauteHandler.ListCategories)
			comm.Get("/posts/categorie/{categorieId}", communauteHandler.ListPosts)
			comm.Get("/posts/{postId}", communauteHandler.GetPost)
			comm.Get("/posts/{postId}/commentaires", communauteHandler.ListComments)

			comm.Group(func(membre chi.Router) {
				membre.Use(authenticate)
				membre.Post("/posts", communauteHandler.CreatePost)
				membre.Post("/posts/{postId}/commentaires", communauteHandler.AddComment)
			})
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
