package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyArithmeticIsExact(t *testing.T) {
	unit := MustMoney("25.00")
	total := unit.MulInt(2).Add(MustMoney("50.00"))
	if total.String() != "100.00" {
		t.Fatalf("want 100.00 got %s", total.String())
	}

	// 0.1 + 0.2 的经典浮点误差不应出现
	sum := MustMoney("0.10").Add(MustMoney("0.20"))
	if !sum.Equal(MustMoney("0.30")) {
		t.Fatalf("want 0.30 got %s", sum.String())
	}
	if got := MustMoney("10.00").Sub(MustMoney("2.55")).String(); got != "7.45" {
		t.Fatalf("want 7.45 got %s", got)
	}
}

func TestMoneyRoundsToTwoPlaces(t *testing.T) {
	m, err := NewMoneyFromString(" 19.999 ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.String() != "20.00" {
		t.Fatalf("want 20.00 got %s", m.String())
	}
	if _, err := NewMoneyFromString("abc"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMoneyJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: MustMoney("39.9")})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `{"price":"39.90"}` {
		t.Fatalf("unexpected json: %s", raw)
	}

	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"1760.00","b":224.9}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.A.String() != "1760.00" || payload.B.String() != "224.90" {
		t.Fatalf("unexpected values: %s %s", payload.A, payload.B)
	}
}

func TestMoneyScanNil(t *testing.T) {
	m := MustMoney("5.00")
	if err := m.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if !m.Equal(ZeroMoney()) {
		t.Fatalf("want zero got %s", m)
	}
	if err := m.Scan("12.345"); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("want 12.35 got %s", m)
	}
}
