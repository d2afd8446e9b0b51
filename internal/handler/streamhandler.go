package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/svc"
	"yidino-api/pkg/animator"
)

const streamWriteWait = 5 * time.Second

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statsStreamHandler streams the stats board: intro frames, then a live
// frame every tick until the client goes away.
func statsStreamHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("stats stream: websocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		svcCtx.Metrics.StreamClients.Inc()
		defer svcCtx.Metrics.StreamClients.Dec()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		// The client never sends anything; reading only notices a close.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		err = svcCtx.Stats.Run(ctx, func(f animator.Frame) error {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			return conn.WriteJSON(f)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logx.WithContext(r.Context()).Debugf("stats stream closed: %v", err)
		}
	}
}
