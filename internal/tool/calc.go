package tool

import (
	"context"
	"fmt"
	"strconv"
)

// Calc is a small arithmetic tool. All functions are variadic over
// numeric arguments.
type Calc struct{}

func (Calc) Identifier() string { return "calc" }

func (c Calc) Functions() map[string]Func {
	return map[string]Func{
		"add":      c.add,
		"subtract": c.subtract,
		"multiply": c.multiply,
		"divide":   c.divide,
	}
}

func (Calc) add(_ context.Context, args []interface{}) (string, error) {
	nums, err := toNumbers(args)
	if err != nil {
		return "", err
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return formatNumber(sum), nil
}

func (Calc) subtract(_ context.Context, args []interface{}) (string, error) {
	nums, err := toNumbers(args)
	if err != nil {
		return "", err
	}
	if len(nums) == 0 {
		return "", fmt.Errorf("subtract needs at least one argument")
	}
	result := nums[0]
	for _, n := range nums[1:] {
		result -= n
	}
	return formatNumber(result), nil
}

func (Calc) multiply(_ context.Context, args []interface{}) (string, error) {
	nums, err := toNumbers(args)
	if err != nil {
		return "", err
	}
	product := 1.0
	for _, n := range nums {
		product *= n
	}
	return formatNumber(product), nil
}

func (Calc) divide(_ context.Context, args []interface{}) (string, error) {
	nums, err := toNumbers(args)
	if err != nil {
		return "", err
	}
	if len(nums) < 2 {
		return "", fmt.Errorf("divide needs at least two arguments")
	}
	result := nums[0]
	for _, n := range nums[1:] {
		if n == 0 {
			return "", fmt.Errorf("division by zero")
		}
		result /= n
	}
	return formatNumber(result), nil
}

func toNumbers(args []interface{}) ([]float64, error) {
	nums := make([]float64, 0, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case int64:
			nums = append(nums, float64(v))
		case float64:
			nums = append(nums, v)
		default:
			return nil, fmt.Errorf("argument %d is not a number: %v", i, a)
		}
	}
	return nums, nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
