package errors

import "net/http"

var ErrInvalidTitle = &Exception{
	Message:    "Название должно содержать минимум 2 слова, не может состоять только из чисел",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidDescription = &Exception{
	Message:    "Описание должно содержать минимум 1 слово и не совпадать с названием",
	StatusCode: http.StatusBadRequest,
}
