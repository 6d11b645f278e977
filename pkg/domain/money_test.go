package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "atelier/pkg/domain-errors"
)

type MoneySuite struct {
	suite.Suite
}

func TestMoneySuite(t *testing.T) {
	suite.Run(t, new(MoneySuite))
}

func (s *MoneySuite) TestConstruction() {
	s.Run("rejects negative amount", func() {
		_, err := Cents(-1, "USD")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects two-letter currency", func() {
		_, err := Cents(100, "US")
		s.Require().Error(err)
		s.Equal("money_currency_invalid", dErrors.MessageOf(err))
	})

	s.Run("rejects non-letter currency", func() {
		_, err := Cents(100, "U5D")
		s.Require().Error(err)
	})

	s.Run("normalizes currency case and whitespace", func() {
		m, err := Cents(100, " eur ")
		s.Require().NoError(err)
		s.Equal("EUR", m.Currency())
		s.Equal(int64(100), m.Amount())
	})

	s.Run("accepts zero", func() {
		m, err := Cents(0, "USD")
		s.Require().NoError(err)
		s.True(m.IsZero())
	})
}

func (s *MoneySuite) TestCentsFromFloat() {
	s.Run("rejects fractional cents", func() {
		_, err := CentsFromFloat(10.5, "USD")
		s.Require().Error(err)
		s.Equal("money_amount_not_integer", dErrors.MessageOf(err))
	})

	s.Run("rejects NaN and Inf", func() {
		_, err := CentsFromFloat(math.NaN(), "USD")
		s.Require().Error(err)
		_, err = CentsFromFloat(math.Inf(1), "USD")
		s.Require().Error(err)
	})

	s.Run("accepts whole numbers", func() {
		m, err := CentsFromFloat(2500, "usd")
		s.Require().NoError(err)
		s.Equal(MustCents(2500, "USD"), m)
	})
}

func (s *MoneySuite) TestArithmetic() {
	usd1000 := MustCents(1000, "USD")
	usd2000 := MustCents(2000, "USD")
	eur100 := MustCents(100, "EUR")

	s.Run("subtract floors at zero", func() {
		got, err := usd1000.Subtract(usd2000)
		s.Require().NoError(err)
		s.Equal(int64(0), got.Amount())
		s.Equal("USD", got.Currency())
	})

	s.Run("subtract in range", func() {
		got, err := usd2000.Subtract(usd1000)
		s.Require().NoError(err)
		s.Equal(int64(1000), got.Amount())
	})

	s.Run("add sums cents", func() {
		got, err := usd1000.Add(usd2000)
		s.Require().NoError(err)
		s.Equal(int64(3000), got.Amount())
	})

	s.Run("mismatched currencies fail", func() {
		_, err := usd1000.Add(eur100)
		s.Require().Error(err)
		s.Equal("money_currency_mismatch:USD!=EUR", dErrors.MessageOf(err))

		_, err = usd1000.Subtract(eur100)
		s.Require().Error(err)

		_, err = usd1000.GreaterOrEqual(eur100)
		s.Require().Error(err)
	})

	s.Run("multiply rate floors to whole cents", func() {
		got, err := MustCents(999, "USD").MultiplyRate(0.15)
		s.Require().NoError(err)
		s.Equal(int64(149), got.Amount())
	})

	s.Run("multiply rate rejects negative rate", func() {
		_, err := usd1000.MultiplyRate(-0.1)
		s.Require().Error(err)
		s.Equal("money_rate_invalid", dErrors.MessageOf(err))
	})
}

func (s *MoneySuite) TestJSON() {
	s.Run("round trips valid money", func() {
		raw, err := json.Marshal(MustCents(1234, "USD"))
		s.Require().NoError(err)
		s.JSONEq(`{"amount_cents":1234,"currency":"USD"}`, string(raw))

		var m Money
		s.Require().NoError(json.Unmarshal(raw, &m))
		s.Equal(MustCents(1234, "USD"), m)
	})

	s.Run("unmarshal validates", func() {
		var m Money
		err := json.Unmarshal([]byte(`{"amount_cents":-5,"currency":"USD"}`), &m)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("string rendering", func() {
		s.Equal("12.05 USD", MustCents(1205, "USD").String())
	})
}
