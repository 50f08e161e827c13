package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Hakuto4838/SkipListKV/datastream"
)

// parseScientificNotation 解析科學記號字串（如 "1e5"）為整數
func parseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// formatScientific 將數字格式化為科學記號（用於檔名）
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp := 0
	divisor := 1
	for n/divisor >= 10 {
		divisor *= 10
		exp++
	}
	coefficient := float64(n) / float64(divisor)
	// 如果係數是整數，就不顯示小數
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal 將浮點數格式化為不含小數點的字串（用於檔名）
func formatDecimal(f float64) string {
	val := int(f * 100)
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

// newKeySource a 為 0 時使用均勻分布，否則使用 Zipf 分布
func newKeySource(n int, a, b float64, seed int64) (datastream.KeySource, error) {
	if a == 0 {
		u, err := datastream.NewUniformKeys(n, seed)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	z, err := datastream.NewZipfKeys(n, a, b, seed)
	if err != nil {
		return nil, err
	}
	return z, nil
}

func main() {
	var out string
	var path string
	var nStr string
	var kStr string
	var a float64
	var b float64
	var seed int64
	var deleteRatio float64
	var nums int

	flag.StringVar(&nStr, "n", "1e4", "number of distinct keys (支援科學記號，如 1e5)")
	flag.StringVar(&kStr, "k", "1e5", "number of operations to generate (支援科學記號，如 1e6)")
	flag.Float64Var(&a, "a", 1.07, "Zipf parameter a (設為 0 時使用均勻分布)")
	flag.Float64Var(&b, "b", 0.0, "Zipf parameter b")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for the generators")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "ratio of delete operations on present keys")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (留空則自動生成)")
	flag.StringVar(&path, "path", ".", "output directory path")
	flag.Parse()

	n, err := parseScientificNotation(nStr)
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "解析參數 n 錯誤: %q %v\n", nStr, err)
		os.Exit(2)
	}
	k, err := parseScientificNotation(kStr)
	if err != nil || k < 0 {
		fmt.Fprintf(os.Stderr, "解析參數 k 錯誤: %q %v\n", kStr, err)
		os.Exit(2)
	}

	if out == "" {
		out = fmt.Sprintf("ops_n%s_k%s_a%s_dr%s",
			formatScientific(n),
			formatScientific(k),
			formatDecimal(a),
			formatDecimal(deleteRatio))
	}
	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "建立輸出目錄失敗: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("生成參數:\n")
	fmt.Printf("  n (keys): %d\n", n)
	fmt.Printf("  k (operations): %d\n", k)
	fmt.Printf("  a: %.2f, b: %.2f\n", a, b)
	fmt.Printf("  deleteRatio: %.2f\n", deleteRatio)
	fmt.Printf("  seed: %d\n", seed)
	fmt.Printf("  檔案數量: %d\n\n", nums)

	for i := 0; i < nums; i++ {
		fileSeed := seed + int64(i)
		src, err := newKeySource(n, a, b, fileSeed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "錯誤: %v\n", err)
			os.Exit(1)
		}
		ops, err := datastream.GenerateOps(src, k, deleteRatio, fileSeed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "錯誤: %v\n", err)
			os.Exit(1)
		}

		filename := out + ".bin"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)
		fmt.Printf("正在生成 %s (key entropy %.3f bits)...\n", outfile, src.Entropy())
		if err := datastream.WriteOpsFile(outfile, ops); err != nil {
			fmt.Fprintf(os.Stderr, "錯誤: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Println("完成!")
}
