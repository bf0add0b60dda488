package event

import (
	"encoding/hex"
	"fmt"
)

// View 消息的展示结构（CLI 与 HTTP 共用）
type View struct {
	Kind    string `json:"kind" yaml:"kind"`
	Hex     string `json:"hex" yaml:"hex"`
	Message any    `json:"message" yaml:"message"`
}

// Describe 生成展示结构；非默认工厂产出的消息只保留原值
func Describe(m any) View {
	msg, ok := m.(Message)
	if !ok {
		return View{Kind: "unknown", Message: m}
	}
	return View{Kind: msg.Kind().String(), Hex: hex.EncodeToString(msg.Bytes()), Message: m}
}

// Text 单行文本描述
func (v View) Text() string {
	return fmt.Sprintf("%-22s %s %+v", v.Kind, v.Hex, v.Message)
}

// Kinds 各消息的消息族名称，用于指标标签
func Kinds(msgs []any) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Describe(m).Kind)
	}
	return out
}
