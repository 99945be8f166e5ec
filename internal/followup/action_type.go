package followup

import (
	"time"

	"SellerCare/internal/model"
)

// messageSource 各动作类型取内容的方式
type messageSource int

const (
	// sourceByStep 按执行次数取第 N 条模板（催发货）
	sourceByStep messageSource = iota
	// sourceRandom 从模板列表随机取一条
	sourceRandom
	// sourceFixed 固定文案，有模板时取第一条
	sourceFixed
)

type actionSpec struct {
	source messageSource
	// postsReview 走评价接口而不是聊天接口
	postsReview bool
	// requiresTemplate 没有模板时视为配置错误，本轮跳过
	requiresTemplate bool
	// defaults 账号未配置模板时的兜底文案，sourceByStep 按步取
	defaults []string
}

var actionSpecs = map[model.ActionType]actionSpec{
	model.ActionReminder: {
		source: sourceByStep,
		defaults: []string{
			"亲，看到您拍下的宝贝还没发货，我这边帮您催一下卖家尽快安排哦~",
			"亲，宝贝还没发货呢，已经再次帮您催促了，请耐心等一等~",
			"亲，非常抱歉让您久等了，发货问题已加急处理，有进展第一时间通知您~",
		},
	},
	model.ActionReviewRequest: {
		source: sourceRandom,
		defaults: []string{
			"感谢惠顾~期待与您再次相遇，麻烦给小店来个好评或加个关注呀~😊",
		},
	},
	model.ActionFlowerRequest: {
		source: sourceFixed,
		defaults: []string{
			"亲，如果对宝贝满意的话，麻烦给个小红花好评哦~您的支持是我最大的动力！🌸😊",
		},
	},
	model.ActionFlowerCollect: {
		source: sourceFixed,
		defaults: []string{
			"收到您的小红花啦，谢谢亲的认可~🌸 期待下次光临！",
		},
	},
	model.ActionAutoReview: {
		source:           sourceRandom,
		postsReview:      true,
		requiresTemplate: true,
	},
}

// Escalating 是否多步升级类型：按次数递进、受 MaxAttempts 限制
func Escalating(t model.ActionType) bool {
	return t == model.ActionReminder
}

// delayDuration 首次延迟，未知单位按秒处理
func delayDuration(value int, unit model.DelayUnit) time.Duration {
	if value < 0 {
		value = 0
	}
	switch unit {
	case model.DelayUnitSeconds:
		return time.Duration(value) * time.Second
	case model.DelayUnitMinutes:
		return time.Duration(value) * time.Minute
	case model.DelayUnitHours:
		return time.Duration(value) * time.Hour
	case model.DelayUnitDays:
		return time.Duration(value) * 24 * time.Hour
	default:
		return time.Duration(value) * time.Second
	}
}

// NextDueTime 计算下一次应执行时间
// ref 是触发时间（attempt=0）或本次执行时间（attempt>0），attempt 为已执行次数
// 返回 false 表示没有后续执行
func NextDueTime(settings *model.FollowUpSettings, ref time.Time, attempt int) (time.Time, bool) {
	if settings == nil {
		return time.Time{}, false
	}
	if Escalating(settings.ActionType) {
		if attempt >= settings.MaxAttempts {
			return time.Time{}, false
		}
		if attempt == 0 {
			return ref.Add(delayDuration(settings.DelayValue, settings.DelayUnit)), true
		}
		return ref.Add(time.Duration(settings.IntervalDays) * 24 * time.Hour), true
	}
	// 非升级类型只执行一次
	if attempt >= 1 {
		return time.Time{}, false
	}
	return ref.Add(delayDuration(settings.DelayValue, settings.DelayUnit)), true
}
