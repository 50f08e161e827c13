package datastream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLOPS1\x00\x00"
// uint16   Version: 1
// uint16   Reserved: 0
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Query,1=Insert,2=Delete)
//   int64   Key

var (
	opsMagic   = [8]byte{'S', 'L', 'O', 'P', 'S', '1', 0, 0}
	opsVersion = uint16(1)

	ErrBadOpsFile = errors.New("not an SLOPS1 operation file")
)

// duplicateRatio 已存在的 key 再次插入的比例，用來觸發 AlreadyExists
const duplicateRatio = 0.05

// GenerateOps 由 src 產生 k 筆操作
// 規則：
//   - key 目前不存在時輸出 Insert
//   - 已存在時 deleteRatio 機率 Delete、5% 重複 Insert、其餘 Query
func GenerateOps(src KeySource, k int, deleteRatio float64, seed int64) ([]Operation, error) {
	if src == nil {
		return nil, errors.New("nil KeySource")
	}
	if k < 0 {
		return nil, fmt.Errorf("invalid k: %d", k)
	}
	if deleteRatio < 0.0 || deleteRatio+duplicateRatio > 1.0 {
		return nil, fmt.Errorf("deleteRatio (%v) must be between 0.0 and %v", deleteRatio, 1.0-duplicateRatio)
	}

	r := rand.New(rand.NewSource(seed))
	present := make(map[int]bool, src.Len())
	ops := make([]Operation, 0, k)
	for i := 0; i < k; i++ {
		idx := src.Next()
		var op OperationType
		if !present[idx] {
			op = OpInsert
			present[idx] = true
		} else {
			p := r.Float64()
			switch {
			case p < deleteRatio:
				op = OpDelete
				present[idx] = false
			case p < deleteRatio+duplicateRatio:
				op = OpInsert
			default:
				op = OpQuery
			}
		}
		ops = append(ops, Operation{Type: op, Key: int64(idx)})
	}
	return ops, nil
}

// WriteOps 以 SLOPS1 格式寫出操作序列
func WriteOps(w io.Writer, ops []Operation) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(opsMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, opsVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil { // reserved
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(ops))); err != nil {
		return err
	}
	for _, op := range ops {
		if err := bw.WriteByte(byte(op.Type)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, op.Key); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadOps 讀取 SLOPS1 格式的操作序列
func ReadOps(r io.Reader) ([]Operation, error) {
	br := bufio.NewReader(r)
	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != opsMagic {
		return nil, ErrBadOpsFile
	}
	var version, reserved uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != opsVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadOpsFile, version)
	}
	if err := binary.Read(br, binary.LittleEndian, &reserved); err != nil {
		return nil, fmt.Errorf("read reserved: %w", err)
	}
	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read op count: %w", err)
	}

	ops := make([]Operation, 0, min(count, 1<<20))
	for i := uint64(0); i < count; i++ {
		t, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read op %d: %w", i, err)
		}
		if OperationType(t) > OpDelete {
			return nil, fmt.Errorf("%w: op %d has type %d", ErrBadOpsFile, i, t)
		}
		var key int64
		if err := binary.Read(br, binary.LittleEndian, &key); err != nil {
			return nil, fmt.Errorf("read op %d key: %w", i, err)
		}
		ops = append(ops, Operation{Type: OperationType(t), Key: key})
	}
	return ops, nil
}

func WriteOpsFile(filename string, ops []Operation) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteOps(file, ops); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ReadOpsFile(filename string) ([]Operation, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadOps(file)
}
