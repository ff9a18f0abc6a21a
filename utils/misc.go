package utils

import (
	"math"
	"strings"
)

const thresFloat64Eq = 1e-9

/*
DeepCopyMap 将src深度合并到dst，嵌套map递归合并，其他值覆盖
*/
func DeepCopyMap(dst, src map[string]interface{}) {
	for k, v := range src {
		if v, ok := v.(map[string]interface{}); ok {
			if bv, ok := dst[k]; ok {
				if bv, ok := bv.(map[string]interface{}); ok {
					DeepCopyMap(bv, v)
					continue
				}
			}
		}
		dst[k] = v
	}
}

/*
SplitSolid 字符串分割，忽略返回结果中的空字符串
*/
func SplitSolid(text string, sep string) []string {
	arr := strings.Split(text, sep)
	result := []string{}
	for _, str := range arr {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

/*
EqualNearly 判断两个float是否近似相等，解决浮点精度导致不等
*/
func EqualNearly(a, b float64) bool {
	return EqualIn(a, b, thresFloat64Eq)
}

/*
EqualIn 判断两个float是否在一定范围内近似相等
*/
func EqualIn(a, b, thres float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= thres
}
