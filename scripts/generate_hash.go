//go:build ignore

// generate_hash.go: утилита для генерации Argon2id хеша пароля админки.
// Запуск: go run scripts/generate_hash.go ваш_пароль
//
// Результат вставьте в .env как ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"serotonyl.ru/dabs-bot/internal/features/admin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/generate_hash.go <пароль>")
		os.Exit(1)
	}

	hash, err := admin.HashPassword(os.Args[1], admin.DefaultHashParams)
	if err != nil {
		fmt.Printf("Ошибка: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Хеш пароля (вставьте в .env как ADMIN_PASSWORD_HASH):")
	fmt.Println(result(hash))
}

// result экранирует $ для docker-compose, где $ в .env интерполируется.
func result(hash string) string {
	if len(os.Args) > 2 && os.Args[2] == "--compose" {
		out := make([]byte, 0, len(hash)+8)
		for i := 0; i < len(hash); i++ {
			if hash[i] == '$' {
				out = append(out, '$')
			}
			out = append(out, hash[i])
		}
		return string(out)
	}
	return hash
}
