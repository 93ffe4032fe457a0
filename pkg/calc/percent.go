package calc

import (
	"math"
)

// PercentChange 计算涨跌幅，保留两位小数用于存储
// PriorDayPrice 不大于零（包括尚未填写的情况）时返回 0
func PercentChange(price, priorDayPrice float64) float64 {
	if priorDayPrice <= 0 {
		return 0
	}
	return round((price-priorDayPrice)/priorDayPrice*100, 2)
}

// DisplayPercentChange 计算涨跌幅，保留一位小数用于展示
func DisplayPercentChange(price, priorDayPrice float64) float64 {
	if priorDayPrice <= 0 {
		return 0
	}
	return round((price-priorDayPrice)/priorDayPrice*100, 1)
}

// round 四舍五入到指定小数位
func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
