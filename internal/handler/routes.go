package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"yidino-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/snapshot",
				Handler: getSnapshotHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/snapshot/refetch",
				Handler: refetchSnapshotHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/snapshot/history",
				Handler: snapshotHistoryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/snapshot/frames",
				Handler: snapshotFramesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/dex",
				Handler: getDexHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/social",
				Handler: getSocialHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/wallets/tracked",
				Handler: listTrackedHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/wallets/tracked/:address",
				Handler: trackWalletHandler(serverCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/wallets/tracked/:address",
				Handler: untrackWalletHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/wallets/:address",
				Handler: getWalletHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/leaderboard",
				Handler: leaderboardHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/tokens/trending",
				Handler: trendingHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/scan/:address",
				Handler: scanHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/stats/frames",
				Handler: statsFramesHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/ws/stats",
				Handler: statsStreamHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/metrics",
				Handler: serverCtx.Metrics.Handler().ServeHTTP,
			},
		},
	)
}
