package service

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// nonTerminatingDigits is the number of significant digits kept when 1/rate has no finite
// decimal expansion (the coefficient has a prime factor other than 2 or 5).
const nonTerminatingDigits = 28

var (
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
	bigFive = big.NewInt(5)
	bigTen  = big.NewInt(10)
)

// ExactReciprocal returns 1/d without rounding whenever the result terminates.
// For d = c·10^e with c = 2^a·5^b, 1/d = 2^(n-a)·5^(n-b)·10^(-n-e) where n = max(a, b).
// d must be non-zero.
func ExactReciprocal(d decimal.Decimal) decimal.Decimal {
	coef := new(big.Int).Abs(d.Coefficient())
	twos := stripFactor(coef, bigTwo)
	fives := stripFactor(coef, bigFive)
	if coef.Cmp(bigOne) != 0 {
		return roundedReciprocal(d)
	}

	n := max(twos, fives)
	num := new(big.Int).Exp(bigTwo, big.NewInt(int64(n-twos)), nil)
	num.Mul(num, new(big.Int).Exp(bigFive, big.NewInt(int64(n-fives)), nil))
	if d.Sign() < 0 {
		num.Neg(num)
	}
	return decimal.NewFromBigInt(num, -int32(n)-d.Exponent())
}

// roundedReciprocal returns 1/d to nonTerminatingDigits significant digits, rounding half
// to even. d = c·10^e with c not a power of ten puts the leading digit of 1/d at
// 10^(-e-len(c)), so the result scale is digits-1+e+len(c).
func roundedReciprocal(d decimal.Decimal) decimal.Decimal {
	coef := new(big.Int).Abs(d.Coefficient())
	scale := int64(nonTerminatingDigits) - 1 + int64(d.Exponent()) + int64(len(coef.String()))

	num := new(big.Int).Exp(bigTen, big.NewInt(scale-int64(d.Exponent())), nil)
	q, rem := new(big.Int).QuoRem(num, coef, new(big.Int))

	switch rem.Lsh(rem, 1).Cmp(coef) {
	case 1:
		q.Add(q, bigOne)
	case 0:
		if q.Bit(0) == 1 {
			q.Add(q, bigOne)
		}
	}
	if d.Sign() < 0 {
		q.Neg(q)
	}
	return decimal.NewFromBigInt(q, -int32(scale))
}

// stripFactor divides x by f in place as long as it divides evenly and returns the count.
func stripFactor(x, f *big.Int) int {
	count := 0
	q, r := new(big.Int), new(big.Int)
	for x.Sign() != 0 {
		q.QuoRem(x, f, r)
		if r.Sign() != 0 {
			break
		}
		x.Set(q)
		count++
	}
	return count
}

// TruncatedReciprocal returns 1/d cut toward zero (never rounded) to d's own scale.
func TruncatedReciprocal(d decimal.Decimal) decimal.Decimal {
	q, _ := decimal.NewFromInt(1).QuoRem(d, storedScale(d))
	return q
}

// storedScale is the number of decimal places a stored rate declares.
func storedScale(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return d.Exponent()
}
