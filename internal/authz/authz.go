// Package authz реализует проверку прав доступа по роли и владению объектом.
//
// Пользователь из группы модераторов может просматривать и редактировать
// любые объекты, но не может создавать новые и удалять существующие.
// Обычный пользователь может выполнять любые действия, но над конкретным
// объектом — только если является его автором.
//
// Все функции — чистые предикаты без побочных эффектов; роль извлекается
// из токена на каждый запрос и передаётся параметром.
package authz

import (
	"errors"
	"net/http"
)

// ErrForbidden возвращается сервисами, когда роль или владение
// не дают права на запрошенное действие.
var ErrForbidden = errors.New("action is not permitted for this role")

// Role типизированная роль пользователя.
type Role string

const (
	// RoleModerator — роль с правом чтения и редактирования любых объектов.
	RoleModerator Role = "moderator"
	// RoleUser — обычный пользователь, полные права только на свои объекты.
	RoleUser Role = "user"
)

// ParseRole приводит строку из claims токена к типизированной роли.
// Неизвестные значения считаются обычным пользователем.
func ParseRole(s string) Role {
	if s == string(RoleModerator) {
		return RoleModerator
	}
	return RoleUser
}

// safeMethods — HTTP-методы, не изменяющие состояние.
var safeMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
}

// PermitVerb проверяет, разрешён ли роли HTTP-метод без привязки к объекту
// (списки, создание). Модератору разрешены безопасные методы и PUT/PATCH,
// создание и удаление запрещены. Остальным разрешено всё.
func PermitVerb(role Role, method string) bool {
	if role != RoleModerator {
		return true
	}
	if _, ok := safeMethods[method]; ok {
		return true
	}
	return method == http.MethodPut || method == http.MethodPatch
}

// PermitObject проверяет доступ к конкретному объекту с известным автором.
// Не-модератор получает GET/PUT/PATCH/DELETE над объектом только как его
// автор; owner == nil означает объект без автора — он недоступен
// не-модератору для этих методов. Для модератора объектная проверка
// сводится к PermitVerb.
func PermitObject(role Role, method, requesterUID string, ownerUID *string) bool {
	if role == RoleModerator {
		return PermitVerb(role, method)
	}
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return ownerUID != nil && *ownerUID == requesterUID
	}
	return true
}
