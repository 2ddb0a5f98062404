package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SaveModel はモデルの状態をファイルに保存する
//
// パラメータ:
//   - state: 保存する状態（gobでエンコード可能な構造体）
//   - filename: 保存先のファイルパス
//
// 戻り値:
//   - error: 保存に失敗した場合のエラー
//
// 使用例:
//
//	err := model.SaveModel(&snapshot, "model.gob")
func SaveModel(state interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := SaveModelToWriter(state, file); err != nil {
		return err
	}

	return nil
}

// LoadModel はファイルからモデルの状態を読み込む
//
// パラメータ:
//   - state: 読み込み先の構造体のポインタ
//   - filename: 読み込み元のファイルパス
//
// 戻り値:
//   - error: 読み込みに失敗した場合のエラー
//
// 使用例:
//
//	var snapshot netSnapshot
//	err := model.LoadModel(&snapshot, "model.gob")
func LoadModel(state interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadModelFromReader(state, file)
}

// SaveModelToWriter はモデルの状態をio.Writerに保存する
func SaveModelToWriter(state interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(state); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルの状態を読み込む
func LoadModelFromReader(state interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(state); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
