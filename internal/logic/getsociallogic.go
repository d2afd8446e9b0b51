package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	cachekeys "yidino-api/internal/cache"
	"yidino-api/internal/svc"
	"yidino-api/pkg/market/social"
)

type GetSocialLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetSocialLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetSocialLogic {
	return &GetSocialLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetSocial collects both platforms; a missing or failing platform is null.
// With Redis configured a complete result is reused for the social TTL so the
// platform rate limits are not spent per request.
func (l *GetSocialLogic) GetSocial() (resp *social.Stats, err error) {
	c := l.svcCtx.Cache
	key := cachekeys.SocialStatsKey()
	if c != nil {
		var cached social.Stats
		err := c.GetCtx(l.ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !c.IsNotFound(err) {
			l.Errorf("read social cache: %v", err)
		}
	}

	stats := l.svcCtx.Social.Collect(l.ctx)
	if c != nil && stats.Twitter != nil && stats.Telegram != nil {
		if ttl := cachekeys.SocialTTL(l.svcCtx.TTL); ttl > 0 {
			if err := c.SetWithExpireCtx(l.ctx, key, stats, ttl); err != nil {
				l.Errorf("write social cache: %v", err)
			}
		}
	}
	return &stats, nil
}
